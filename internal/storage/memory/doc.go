// Package memory provides the in-memory key-value store.
//
// Values are text. A key may carry an absolute expiry in Unix milliseconds;
// an entry whose expiry has passed is absent on every read path and is
// deleted the first time it is read (lazy expiration). A background sweeper
// removes expired entries nobody reads again.
//
// Locking:
//
// The store has two independent locks. The mutation lock keeps the value
// and expiry maps consistent for every single-step operation. The critical
// section is a coarse, non-reentrant lock that callers hold around
// read-modify-write sequences; the sweeper takes it around each deletion,
// so a compound operation never sees its key vanish halfway through.
package memory
