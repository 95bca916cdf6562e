package command

import "strings"

// Verb identifies a command.
type Verb uint8

const (
	VerbUnknown Verb = iota
	VerbPing
	VerbEcho
	VerbSet
	VerbGet
	VerbDel
	VerbLock
	VerbUnlock
	VerbTTL
	VerbAppend
	VerbPop
	VerbTail
)

var verbNames = [...]string{
	VerbUnknown: "UNKNOWN",
	VerbPing:    "PING",
	VerbEcho:    "ECHO",
	VerbSet:     "SET",
	VerbGet:     "GET",
	VerbDel:     "DEL",
	VerbLock:    "LOCK",
	VerbUnlock:  "UNLOCK",
	VerbTTL:     "TTL",
	VerbAppend:  "APPEND",
	VerbPop:     "POP",
	VerbTail:    "TAIL",
}

var verbsByName = func() map[string]Verb {
	m := make(map[string]Verb, len(verbNames))
	for v, name := range verbNames {
		if Verb(v) != VerbUnknown {
			m[name] = Verb(v)
		}
	}
	return m
}()

// String returns the canonical upper-case name.
func (v Verb) String() string {
	if int(v) < len(verbNames) {
		return verbNames[v]
	}
	return verbNames[VerbUnknown]
}

// ParseVerb maps a command name to its Verb, ignoring case. Unrecognized
// names map to VerbUnknown.
func ParseVerb(name string) Verb {
	if v, ok := verbsByName[name]; ok {
		return v
	}
	return verbsByName[strings.ToUpper(name)]
}

// Verbs returns every known verb in declaration order.
func Verbs() []Verb {
	out := make([]Verb, 0, len(verbNames)-1)
	for v := VerbPing; int(v) < len(verbNames); v++ {
		out = append(out, v)
	}
	return out
}
