package rbac

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"geostories.app/core/pubky"
	adapter "github.com/Blank-Xu/sql-adapter"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	_ "github.com/mattn/go-sqlite3"
)

const (
	Model = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && r.act == p.act
`
)

const (
	ActRead  = "read"
	ActWrite = "write"
)

var ErrInvalidCapability = errors.New("invalid capability")

// Capability grants actions on every path under Scope, written on the wire
// as "/pub/geostories.app/:rw".
type Capability struct {
	Scope   string
	Actions []string
}

func (c Capability) String() string {
	var b strings.Builder
	b.WriteString(c.Scope)
	b.WriteString(":")
	for _, a := range c.Actions {
		b.WriteByte(a[0])
	}
	return b.String()
}

// ParseCapabilities parses a comma separated capability list.
func ParseCapabilities(s string) ([]Capability, error) {
	var caps []Capability
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		i := strings.LastIndex(raw, ":")
		if i <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCapability, raw)
		}
		scope, perms := raw[:i], raw[i+1:]
		if !strings.HasPrefix(scope, "/") || !strings.HasSuffix(scope, "/") {
			return nil, fmt.Errorf("%w: scope must be a directory: %q", ErrInvalidCapability, scope)
		}

		c := Capability{Scope: scope}
		for _, p := range perms {
			switch p {
			case 'r':
				c.Actions = append(c.Actions, ActRead)
			case 'w':
				c.Actions = append(c.Actions, ActWrite)
			default:
				return nil, fmt.Errorf("%w: unknown permission %q in %q", ErrInvalidCapability, p, raw)
			}
		}
		if len(c.Actions) == 0 {
			return nil, fmt.Errorf("%w: no permissions in %q", ErrInvalidCapability, raw)
		}
		caps = append(caps, c)
	}
	return caps, nil
}

type Enforcer struct {
	E *casbin.Enforcer
}

func NewEnforcer(path string) (*Enforcer, error) {
	m, err := model.NewModelFromString(Model)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=1")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	a, err := adapter.NewAdapter(db, "sqlite3", "capabilities")
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m, a)
	if err != nil {
		return nil, err
	}

	e.EnableAutoSave(false)

	return &Enforcer{e}, nil
}

// Grant records caps for identity.
func (e *Enforcer) Grant(identity pubky.Key, caps []Capability) error {
	var policies [][]string
	for _, c := range caps {
		for _, act := range c.Actions {
			policies = append(policies, []string{identity.String(), c.Scope + "*", act})
		}
	}
	if len(policies) == 0 {
		return nil
	}
	_, err := e.E.AddPolicies(policies)
	return err
}

// Capabilities lists what identity currently holds, one entry per scope.
func (e *Enforcer) Capabilities(identity pubky.Key) ([]Capability, error) {
	policies, err := e.E.GetFilteredPolicy(0, identity.String())
	if err != nil {
		return nil, err
	}

	var caps []Capability
	index := make(map[string]int)
	for _, p := range policies {
		scope := strings.TrimSuffix(p[1], "*")
		i, ok := index[scope]
		if !ok {
			i = len(caps)
			index[scope] = i
			caps = append(caps, Capability{Scope: scope})
		}
		caps[i].Actions = append(caps[i].Actions, p[2])
	}
	return caps, nil
}

func (e *Enforcer) IsWriteAllowed(identity pubky.Key, path string) (bool, error) {
	return e.E.Enforce(identity.String(), path, ActWrite)
}
