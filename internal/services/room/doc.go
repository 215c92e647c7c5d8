// Package room manages room membership and the symmetric keys that go
// with it.
//
// Joining derives the room key from the passphrase and stores it locally;
// the key itself never leaves the client. Leaving or deleting a room
// removes the key, and a relay-side delete_room does the same. Memberships
// are announced again after every reconnect because the relay keeps them
// per connection.
package room
