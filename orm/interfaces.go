package orm

// Model is the value stored under a bucket key. It is serialized with the
// orm codec, so it must be a pointer to a struct made of amino compatible
// fields.
type Model interface {
	// Validate returns error if the object is not in a valid
	// state to save to the db (eg. field missing, out of range, ...)
	Validate() error
}

// Object is what is stored in the bucket
// Key is joined with the prefix to set the full key
// Value is the data stored
type Object interface {
	Keyed
	Validate() error
	Value() Model
	Clone() Object
}

// Keyed is anything that can identify itself
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}
