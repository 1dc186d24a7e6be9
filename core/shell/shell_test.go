package shell

// fakeEnv is a fixed expansion environment for tests.
type fakeEnv struct {
	vars   map[string]string
	status int
}

func (f *fakeEnv) LookupVar(name string) (string, bool) {
	val, ok := f.vars[name]
	return val, ok
}

func (f *fakeEnv) LastStatus() int {
	return f.status
}

func newFakeEnv(kv ...string) *fakeEnv {
	env := &fakeEnv{vars: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		env.vars[kv[i]] = kv[i+1]
	}
	return env
}
