// Package namegen produces human readable two-word display names such as "Brave Otter".
package namegen

import "math/rand/v2"

var adjectives = []string{
	"Amber", "Brave", "Calm", "Clever", "Cosmic", "Curious", "Dapper", "Eager",
	"Fancy", "Fuzzy", "Gentle", "Glossy", "Happy", "Hidden", "Jolly", "Lively",
	"Lucky", "Mellow", "Mighty", "Misty", "Nimble", "Noble", "Plucky", "Quiet",
	"Rapid", "Rustic", "Silent", "Sleepy", "Snappy", "Solar", "Sunny", "Swift",
	"Tidy", "Velvet", "Vivid", "Witty", "Young", "Zesty", "Bold", "Crisp",
}

var nouns = []string{
	"Badger", "Bison", "Comet", "Coyote", "Crane", "Dolphin", "Falcon", "Ferret",
	"Fox", "Gecko", "Heron", "Ibis", "Jaguar", "Koala", "Lemur", "Lynx",
	"Marten", "Meteor", "Moose", "Narwhal", "Ocelot", "Otter", "Owl", "Panda",
	"Pelican", "Puffin", "Quokka", "Raven", "Robin", "Salmon", "Seal", "Sparrow",
	"Tapir", "Tiger", "Toucan", "Walrus", "Wombat", "Yak", "Zebra", "Orca",
}

type Generator struct {
	rnd *rand.Rand
}

func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a generator with a deterministic sequence.
func NewSeeded(seed1, seed2 uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

func (g *Generator) Generate() string {
	return adjectives[g.rnd.IntN(len(adjectives))] + " " + nouns[g.rnd.IntN(len(nouns))]
}
