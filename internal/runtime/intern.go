package runtime

// NameID is a small integer handle issued by Interner, stable for the
// life of an Executor.
type NameID uint32

// Interner is a bidirectional mapping between string content and NameID.
// It is not synchronized: callers may share one across multiple
// Executors only if they agree never to mutate it concurrently.
type Interner struct {
	byText []string
	ids    map[string]NameID
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]NameID)}
}

// Intern returns the NameID for text, allocating a fresh one on first
// use. Equal texts always return equal ids.
func (t *Interner) Intern(text string) NameID {
	if id, ok := t.ids[text]; ok {
		return id
	}
	id := NameID(len(t.byText))
	t.byText = append(t.byText, text)
	t.ids[text] = id
	return id
}

// Resolve returns the text for id. Infallible for ids this table issued.
func (t *Interner) Resolve(id NameID) string {
	return t.byText[id]
}

// Len reports how many distinct names have been interned.
func (t *Interner) Len() int { return len(t.byText) }
