package service

import (
	"fmt"
	"math/rand"
)

// Generated handles are alliterative "Adjective Animal" pairs. Both lists are
// indexed by initial so a draw always produces a matching pair.
var usernameParts = []struct {
	adjectives []string
	animals    []string
}{
	{[]string{"Bouncy", "Brave", "Breezy"}, []string{"Bobcat", "Badger", "Bison"}},
	{[]string{"Cheerful", "Calm", "Clever"}, []string{"Cheetah", "Caracal", "Crane"}},
	{[]string{"Daring", "Dapper"}, []string{"Dolphin", "Dingo"}},
	{[]string{"Friendly", "Fearless"}, []string{"Fox", "Falcon", "Finch"}},
	{[]string{"Gentle", "Gleeful"}, []string{"Gazelle", "Gecko", "Gibbon"}},
	{[]string{"Happy", "Humble", "Hasty"}, []string{"Hedgehog", "Hornbill", "Heron"}},
	{[]string{"Jolly", "Jaunty"}, []string{"Jaguar", "Jackal"}},
	{[]string{"Lucky", "Lively"}, []string{"Lark", "Lemur", "Lynx"}},
	{[]string{"Merry", "Mellow"}, []string{"Meerkat", "Mongoose", "Marmot"}},
	{[]string{"Nimble", "Noble"}, []string{"Newt", "Nightjar"}},
	{[]string{"Plucky", "Peppy"}, []string{"Pangolin", "Puffin", "Parrot"}},
	{[]string{"Swift", "Sunny", "Spry"}, []string{"Swordfish", "Serval", "Starling"}},
	{[]string{"Tidy", "Tranquil"}, []string{"Toucan", "Tapir"}},
	{[]string{"Witty", "Wily"}, []string{"Wombat", "Wallaby", "Wren"}},
}

// generateUsername draws handles until one passes the taken check. After
// enough collisions it falls back to a numeric suffix so registration can
// never stall on a crowded namespace.
func generateUsername(taken func(string) bool) string {
	const attempts = 40

	var last string
	for i := 0; i < attempts; i++ {
		group := usernameParts[rand.Intn(len(usernameParts))]
		last = fmt.Sprintf("%s %s",
			group.adjectives[rand.Intn(len(group.adjectives))],
			group.animals[rand.Intn(len(group.animals))])
		if !taken(last) {
			return last
		}
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s %d", last, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
