// Package room implements the symmetric cipher shared by every member of a
// room.
//
// The room key is derived from a human-chosen passphrase with a single
// unsalted SHA-512 pass, truncated to 32 bytes. This is deliberately
// deterministic: members who join independently converge on the same key
// without a key-exchange round trip. It is weaker than a per-member key
// exchange. There is no key stretching and no per-room salt, so anyone who
// can guess the passphrase can read the room. Changing the derivation
// would orphan existing rooms.
//
// Messages are sealed with NaCl secretbox (XSalsa20-Poly1305) under a
// fresh random 24-byte nonce per call.
package room
