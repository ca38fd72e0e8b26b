package container_test

import "github.com/km-arc/canister/framework/container"

// ── fixtures ──────────────────────────────────────────────────────────────────

type Greeter interface {
	Foo() string
}

// Example carries a field so distinct instances have distinct addresses.
type Example struct {
	id int
}

func (Example) Foo() string { return "bar" }

func NewExample() *Example { return &Example{} }

// ExampleDI needs a provided type plus parameters nothing is registered for.
type ExampleDI struct {
	Example *Example
	NoValue any
	Tags    []string
	Lookup  map[string]int
	Blah    int
	Ratio   float64
	Label   string
	Booyah  func() error
}

func NewExampleDI(example *Example, novalue any, tags []string, lookup map[string]int, blah int, ratio float64, label string, booyah func() error) *ExampleDI {
	return &ExampleDI{
		Example: example,
		NoValue: novalue,
		Tags:    tags,
		Lookup:  lookup,
		Blah:    blah,
		Ratio:   ratio,
		Label:   label,
		Booyah:  booyah,
	}
}

func (e *ExampleDI) Output() string { return e.Example.Foo() }

type AliasDI struct {
	greeter Greeter
}

func NewAliasDI(g Greeter) *AliasDI { return &AliasDI{greeter: g} }

func (a *AliasDI) Output() string { return a.greeter.Foo() }

type Defined struct {
	Example *Example
	Foo     any
}

func NewDefined(example *Example, foo any) *Defined {
	return &Defined{Example: example, Foo: foo}
}

// Missing is never provided, so autowiring it degrades to nil.
type Missing struct{}

type NeedsMissing struct {
	Missing *Missing
}

func NewNeedsMissing(m *Missing) *NeedsMissing { return &NeedsMissing{Missing: m} }

// Counter counts its own instances through the shared *int.
type Counter struct {
	count     int
	instances *int
}

func (c *Counter) Increase()      { c.count++ }
func (c *Counter) Count() int     { return c.count }
func (c *Counter) Instances() int { return *c.instances }

func counterConstructor(instances *int) *container.Callable {
	return container.Fn(func(count int) *Counter {
		*instances++
		return &Counter{count: count, instances: instances}
	}, "count")
}

// provideFixtures registers the fixture constructors with c.
func provideFixtures(c *container.Canister) {
	must(c.Provide(NewExample))
	must(c.Provide(NewExampleDI, "example", "novalue", "tags", "lookup", "blah", "ratio", "label", "booyah"))
	must(c.Provide(NewAliasDI, "greeter"))
	must(c.Provide(NewDefined, "example", "foo"))
	must(c.Provide(NewNeedsMissing, "missing"))
}

func must(_ string, err error) {
	if err != nil {
		panic(err)
	}
}
