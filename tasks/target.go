package tasks

import "fmt"

//go:generate go run golang.org/x/tools/cmd/stringer -type=Target -linecomment

// Target selects which of a task's directories or file sets is meant.
type Target int

const (
	// NoTarget asks for every file set of a task, src before watch. It is
	// only meaningful to glob resolution.
	NoTarget Target = iota // none

	Src   // src
	Dest  // dest
	Watch // watch

	// Base is an alias for Src when resolving directories.
	Base // base

	// Main is an alias for Src when resolving file sets.
	Main // main
)

// ParseTarget parses the name of a target, as produced by [Target.String].
// The empty string parses as NoTarget.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "none":
		return NoTarget, nil
	case "src":
		return Src, nil
	case "dest":
		return Dest, nil
	case "watch":
		return Watch, nil
	case "base":
		return Base, nil
	case "main":
		return Main, nil
	}
	return NoTarget, fmt.Errorf("'%s' is not a target", s)
}

// Dir maps t onto the directory it selects: Src or Dest. Base and Watch are
// aliases for Src. It returns false for targets that don't name a directory.
func (t Target) Dir() (Target, bool) {
	switch t {
	case Src, Base, Watch:
		return Src, true
	case Dest:
		return Dest, true
	}
	return NoTarget, false
}

// Files maps t onto the file set it selects: Src, Watch, or NoTarget for
// both. Main is an alias for Src. It returns false for targets that don't
// name a file set.
func (t Target) Files() (Target, bool) {
	switch t {
	case NoTarget:
		return NoTarget, true
	case Src, Main:
		return Src, true
	case Watch:
		return Watch, true
	}
	return NoTarget, false
}
