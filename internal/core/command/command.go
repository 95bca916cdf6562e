package command

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// Store is the subset of the key-value store the commands use.
type Store interface {
	Set(key, value string)
	SetWithExpiry(key, value string, ttl time.Duration)
	SetRawValue(key, value string)
	Delete(key string)
	Get(key string) (string, bool)
	RemainingTTL(key string) (time.Duration, bool)
	WithCriticalSection(fn func())
}

// Handler executes one verb.
type Handler func(s Store, args []string) resp.Value

// LockedValue is the value LOCK stores under a free key.
const LockedValue = "locked"

// Error texts returned to clients.
const (
	MsgNoArguments    = "No arguments expected"
	MsgOneArgument    = "Expected 1 argument"
	MsgTwoArguments   = "Expected 2 arguments"
	MsgSetArity       = "Expected 2 or 4 arguments"
	MsgExpectedEX     = "Expected EX keyword"
	MsgExpectedTTL    = "Expected integer after EX keyword"
	MsgExpectedCount  = "Expected integer as second argument"
	MsgNegativeCount  = "Expected non-negative integer as second argument"
	MsgLineBreak      = "Argument must not contain CR or LF"
	MsgAlreadyLocked  = "Key is already locked"
	MsgUnknownCommand = "Unknown command"
	MsgUnknownError   = "Unknown error"
)

const (
	replyOK       = "OK"
	replyPong     = "PONG"
	expiryKeyword = "EX"

	// maxTTLMillis is the largest EX value that fits in a time.Duration.
	maxTTLMillis = math.MaxInt64 / int64(time.Millisecond)
)

var table = map[Verb]Handler{
	VerbPing:   ping,
	VerbEcho:   echo,
	VerbSet:    set,
	VerbGet:    get,
	VerbDel:    del,
	VerbLock:   lock,
	VerbUnlock: unlock,
	VerbTTL:    ttl,
	VerbAppend: appendValue,
	VerbPop:    pop,
	VerbTail:   tail,
}

// Execute runs verb against s. Unknown verbs yield the "Unknown command"
// error value.
func Execute(s Store, verb Verb, args []string) resp.Value {
	h, ok := table[verb]
	if !ok {
		return resp.Error(MsgUnknownCommand)
	}
	return h(s, args)
}

func okReply() resp.Value { return resp.SimpleString(replyOK) }

func ping(_ Store, args []string) resp.Value {
	if len(args) != 0 {
		return resp.Error(MsgNoArguments)
	}
	return resp.SimpleString(replyPong)
}

func echo(_ Store, args []string) resp.Value {
	if len(args) != 1 {
		return resp.Error(MsgOneArgument)
	}
	if strings.ContainsAny(args[0], "\r\n") {
		return resp.Error(MsgLineBreak)
	}
	return resp.SimpleString(args[0])
}

func set(s Store, args []string) resp.Value {
	switch len(args) {
	case 2:
		s.Set(args[0], args[1])
		return okReply()
	case 4:
		if !strings.EqualFold(args[2], expiryKeyword) {
			return resp.Error(MsgExpectedEX)
		}
		ms, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil || ms > maxTTLMillis || ms < -maxTTLMillis {
			return resp.Error(MsgExpectedTTL)
		}
		s.SetWithExpiry(args[0], args[1], time.Duration(ms)*time.Millisecond)
		return okReply()
	default:
		return resp.Error(MsgSetArity)
	}
}

func get(s Store, args []string) resp.Value {
	if len(args) != 1 {
		return resp.Error(MsgOneArgument)
	}
	v, found := s.Get(args[0])
	if !found {
		return resp.Null()
	}
	return resp.BulkString(v)
}

func del(s Store, args []string) resp.Value {
	if len(args) != 1 {
		return resp.Error(MsgOneArgument)
	}
	s.Delete(args[0])
	return okReply()
}

func lock(s Store, args []string) resp.Value {
	if len(args) != 1 {
		return resp.Error(MsgOneArgument)
	}
	reply := okReply()
	s.WithCriticalSection(func() {
		if _, held := s.Get(args[0]); held {
			reply = resp.Error(MsgAlreadyLocked)
			return
		}
		s.Set(args[0], LockedValue)
	})
	return reply
}

func unlock(s Store, args []string) resp.Value {
	if len(args) != 1 {
		return resp.Error(MsgOneArgument)
	}
	s.Delete(args[0])
	return okReply()
}

func ttl(s Store, args []string) resp.Value {
	if len(args) != 1 {
		return resp.Error(MsgOneArgument)
	}
	left, found := s.RemainingTTL(args[0])
	if !found {
		return resp.Null()
	}
	return resp.Integer(left.Milliseconds())
}

func appendValue(s Store, args []string) resp.Value {
	if len(args) != 2 {
		return resp.Error(MsgTwoArguments)
	}
	var length int
	s.WithCriticalSection(func() {
		current, _ := s.Get(args[0])
		next := current + args[1]
		s.SetRawValue(args[0], next)
		length = utf8.RuneCountInString(next)
	})
	return resp.Integer(int64(length))
}

func pop(s Store, args []string) resp.Value {
	return cut(s, args, func(runes []rune, n int) (string, string) {
		return string(runes[:n]), string(runes[n:])
	})
}

func tail(s Store, args []string) resp.Value {
	return cut(s, args, func(runes []rune, n int) (string, string) {
		split := len(runes) - n
		return string(runes[split:]), string(runes[:split])
	})
}

// cut removes up to N characters from the value under args[0] and returns
// them. split gets a count already clamped to the value length and
// returns (removed, remainder).
func cut(s Store, args []string, split func(runes []rune, n int) (string, string)) resp.Value {
	if len(args) != 2 {
		return resp.Error(MsgTwoArguments)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return resp.Error(MsgExpectedCount)
	}
	if n < 0 {
		return resp.Error(MsgNegativeCount)
	}

	reply := resp.Null()
	s.WithCriticalSection(func() {
		current, found := s.Get(args[0])
		if !found {
			return
		}
		runes := []rune(current)
		if n > len(runes) {
			n = len(runes)
		}
		removed, rest := split(runes, n)
		s.SetRawValue(args[0], rest)
		reply = resp.BulkString(removed)
	})
	return reply
}
