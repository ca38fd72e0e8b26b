package container

// ContextualBuilder collects definitions for one name through a fluent chain
// and registers them with Define.
//
//	c.When("mailer").
//	    Needs("host").GiveValue("smtp.example.com").
//	    Needs("log").Give("logger").
//	    Define()
//
// is the same as
//
//	c.Define("mailer", container.Definitions{
//	    "host": container.Val("smtp.example.com"),
//	    "log":  container.Ref("logger"),
//	})
type ContextualBuilder struct {
	container *Canister
	name      string
	needs     string
	defs      Definitions
}

// When starts a definition chain for name.
func (c *Canister) When(name string) *ContextualBuilder {
	return &ContextualBuilder{container: c, name: name, defs: Definitions{}}
}

// Needs selects the parameter the next Give or GiveValue applies to.
func (b *ContextualBuilder) Needs(param string) *ContextualBuilder {
	b.needs = param
	return b
}

// Give injects the result of resolving key at build time.
func (b *ContextualBuilder) Give(key string) *ContextualBuilder {
	return b.give(Ref(key))
}

// GiveValue injects value verbatim.
func (b *ContextualBuilder) GiveValue(value any) *ContextualBuilder {
	return b.give(Val(value))
}

func (b *ContextualBuilder) give(d Definition) *ContextualBuilder {
	if b.needs != "" {
		b.defs[b.needs] = d
		b.needs = ""
	}
	return b
}

// Define registers the collected definitions. Like Canister.Define it is a
// no-op when name already has definitions.
func (b *ContextualBuilder) Define() error {
	return b.container.Define(b.name, b.defs)
}
