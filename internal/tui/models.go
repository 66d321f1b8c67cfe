package tui

type View int

const (
	ViewFeed View = iota
	ViewDetails
	ViewDiscover
	ViewProfile
	ViewLogin
	ViewComposeReview
	ViewComposePost
	ViewSearch
)
