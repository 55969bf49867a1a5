package term

// Pattern is a surface rule pattern. Definitions with patterned rules are
// rewritten into a single pattern-free rule before match elaboration
// finishes; afterwards every non-builtin definition has exactly one rule
// with no patterns.
type Pattern interface{ isPattern() }

// VarPat binds a name, or erases when the name is empty ("*").
type VarPat struct{ Nam Name }

// CtrPat matches a constructor application; fields are variable patterns.
type CtrPat struct {
	Nam Name
	Fld []Pattern
}

func (*VarPat) isPattern() {}
func (*CtrPat) isPattern() {}

// Rule is one equation of a definition.
type Rule struct {
	Pats []Pattern
	Body Term
}

// Definition is a named group of rules. Builtin definitions come with the
// compiler and are exempt from some user-facing diagnostics.
type Definition struct {
	Name    Name
	Rules   []*Rule
	Builtin bool
}

// Rule0 returns the only rule of a definition that has already been
// collapsed to its canonical single-rule form.
func (d *Definition) Rule0() *Rule { return d.Rules[0] }

// AdtCtr is one constructor of an algebraic data type, with its ordered
// field names.
type AdtCtr struct {
	Name   Name
	Fields []Name
}

// Adt is an algebraic data type: an ordered list of constructors.
type Adt struct {
	Name    Name
	Ctrs    []AdtCtr
	Builtin bool
}

// Ctr returns the constructor with the given name, or nil.
func (a *Adt) Ctr(name Name) *AdtCtr {
	for i := range a.Ctrs {
		if a.Ctrs[i].Name == name {
			return &a.Ctrs[i]
		}
	}
	return nil
}

// Book is the full program: definitions plus the ADT table. Definition and
// ADT iteration follow insertion order so that every pass and the printer
// are deterministic.
type Book struct {
	defNames []Name
	defs     map[Name]*Definition

	adtNames []Name
	adts     map[Name]*Adt

	// Ctrs maps each constructor name to its owning ADT.
	Ctrs map[Name]Name

	// Entrypoint is the name of the program root, when known.
	Entrypoint Name
}

func NewBook() *Book {
	return &Book{
		defs: make(map[Name]*Definition),
		adts: make(map[Name]*Adt),
		Ctrs: make(map[Name]Name),
	}
}

// AddDef inserts a definition, keeping insertion order. Re-inserting an
// existing name overwrites the definition in its original position.
func (b *Book) AddDef(def *Definition) {
	if _, ok := b.defs[def.Name]; !ok {
		b.defNames = append(b.defNames, def.Name)
	}
	b.defs[def.Name] = def
}

// Def returns the definition with the given name, or nil.
func (b *Book) Def(name Name) *Definition { return b.defs[name] }

// HasDef reports whether a definition with the given name exists.
func (b *Book) HasDef(name Name) bool {
	_, ok := b.defs[name]
	return ok
}

// RemoveDef deletes a definition, preserving the order of the rest.
func (b *Book) RemoveDef(name Name) {
	if _, ok := b.defs[name]; !ok {
		return
	}
	delete(b.defs, name)
	for i, n := range b.defNames {
		if n == name {
			b.defNames = append(b.defNames[:i], b.defNames[i+1:]...)
			break
		}
	}
}

// DefNames returns the definition names in insertion order. The returned
// slice is shared; callers that mutate the book while iterating should copy
// it first.
func (b *Book) DefNames() []Name { return b.defNames }

// AddAdt inserts an algebraic data type and indexes its constructors.
func (b *Book) AddAdt(adt *Adt) {
	if _, ok := b.adts[adt.Name]; !ok {
		b.adtNames = append(b.adtNames, adt.Name)
	}
	b.adts[adt.Name] = adt
	for _, ctr := range adt.Ctrs {
		b.Ctrs[ctr.Name] = adt.Name
	}
}

// Adt returns the ADT with the given name, or nil.
func (b *Book) Adt(name Name) *Adt { return b.adts[name] }

// AdtNames returns the ADT names in insertion order.
func (b *Book) AdtNames() []Name { return b.adtNames }

// CtrAdt resolves a constructor name to its owning ADT, or nil.
func (b *Book) CtrAdt(ctr Name) *Adt {
	adtName, ok := b.Ctrs[ctr]
	if !ok {
		return nil
	}
	return b.adts[adtName]
}
