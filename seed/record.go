// Package seed parses declarative knowledge records into substrates (spec
// §4.5): a file format mirroring the teacher's YAML-driven config loading
// (pkg/config.LoadFile), aggregated validation via go-multierror, and a
// two-pass relationship resolution that turns named references into graph
// edges once every record has been ingested.
package seed

// RelationshipRef is one declared-but-unresolved relationship: a seed names
// its target by string, resolved to an identity only after every record in
// the batch has been ingested (spec §4.5 step 6).
type RelationshipRef struct {
	Target string `yaml:"target"`
	Kind   string `yaml:"kind"`
}

// Record mirrors the declarative seed file shape (spec §6 "Seed file
// format"): name, category, domain, definition, usage, meaning, etymology,
// expression source, signature, return type, relationships, synonyms,
// antonyms, related, examples, metadata, tags.
type Record struct {
	Name             string            `yaml:"name"`
	Category         string            `yaml:"category"`
	Domain           string            `yaml:"domain"`
	Definition       string            `yaml:"definition"`
	Usage            []string          `yaml:"usage"`
	Meaning          string            `yaml:"meaning"`
	Etymology        string            `yaml:"etymology"`
	ExpressionSource string            `yaml:"expression_source"`
	Signature        string            `yaml:"signature"`
	ReturnType       string            `yaml:"return_type"`
	Relationships    []RelationshipRef `yaml:"relationships"`
	Synonyms         []string          `yaml:"synonyms"`
	Antonyms         []string          `yaml:"antonyms"`
	Related          []string          `yaml:"related"`
	Examples         []string          `yaml:"examples"`
	Metadata         map[string]string `yaml:"metadata"`
	Tags             []string          `yaml:"tags"`
}

// file is the top-level shape a seed YAML document unmarshals into.
type file struct {
	Seeds []Record `yaml:"seeds"`
}
