package javavm

import "fmt"

// Kind distinguishes the three JavaVM handle kinds.
type Kind uint8

const (
	KindStandalone Kind = iota + 1
	KindWrapper
	KindGuest
)

func (k Kind) String() string {
	switch k {
	case KindStandalone:
		return "standalone"
	case KindWrapper:
		return "wrapper"
	case KindGuest:
		return "guest"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}
