// Package varstore keeps named variables in a BoltDB file so they can
// feed variable substitution across runs.
package varstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bmc/javautil-sub002/logging"
	"github.com/bmc/javautil-sub002/text"

	bolt "go.etcd.io/bbolt"
)

// DefaultBucket holds variables when no other bucket is chosen.
const DefaultBucket = "vars"

var log = logging.New("varstore")

// ErrClosed is returned when using a Store after Close.
var ErrClosed = errors.New("variable store is closed")

// Variable is the stored form of a variable.
type Variable struct {
	Name    string    `json:"-"`
	Value   string    `json:"value"`
	Updated time.Time `json:"updated"`
}

// Store is a set of variables in one bucket of a BoltDB file.
type Store struct {
	filename string
	bucket   []byte
	db       *bolt.DB
}

// Open opens (creating if necessary) the store file.  Open waits at
// most a second for another process to release the file.
func Open(filename string) (*Store, error) {
	opts := &bolt.Options{
		Timeout: time.Second,
	}
	db, err := bolt.Open(filename, 0644, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	log.Debug("opened", "file", filename)
	return &Store{
		filename: filename,
		bucket:   []byte(DefaultBucket),
		db:       db,
	}, nil
}

// Bucket returns a view of the same file that uses a different
// bucket.  Closing either Store closes the file.
func (s *Store) Bucket(name string) *Store {
	return &Store{
		filename: s.filename,
		bucket:   []byte(name),
		db:       s.db,
	}
}

// Buckets lists the buckets in the file.
func (s *Store) Buckets(ctx context.Context) ([]string, error) {
	var acc []string
	err := s.view(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			acc = append(acc, string(name))
			return nil
		})
	})
	return acc, err
}

func (s *Store) Close() error {
	log.Debug("closing", "file", s.filename)
	return s.db.Close()
}

func (s *Store) view(f func(tx *bolt.Tx) error) error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.View(f)
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

func (s *Store) update(f func(tx *bolt.Tx) error) error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Update(f)
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

// Set stores a variable.
func (s *Store) Set(ctx context.Context, name, value string) error {
	return s.SetAll(ctx, map[string]string{name: value})
}

// SetAll stores several variables in one transaction.
func (s *Store) SetAll(ctx context.Context, vars map[string]string) error {
	if len(vars) == 0 {
		return nil
	}
	now := time.Now().UTC()
	vals := make(map[string][]byte, len(vars))
	for name, value := range vars {
		if name == "" {
			return errors.New("empty variable name")
		}
		js, err := json.Marshal(&Variable{Value: value, Updated: now})
		if err != nil {
			return err
		}
		vals[name] = js
	}

	log.Debug("set", "bucket", string(s.bucket), "count", len(vals))
	return s.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		for name, js := range vals {
			if err = b.Put([]byte(name), js); err != nil {
				return err
			}
		}
		return nil
	})
}

// Lookup returns the stored variable, or nil if there isn't one.
func (s *Store) Lookup(ctx context.Context, name string) (*Variable, error) {
	var v *Variable
	err := s.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		js := b.Get([]byte(name))
		if js == nil {
			return nil
		}
		v = &Variable{Name: name}
		return json.Unmarshal(js, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns the variable's value and whether it's defined.
func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := s.Lookup(ctx, name)
	if err != nil || v == nil {
		return "", false, err
	}
	return v.Value, true, nil
}

// Delete removes a variable.  Deleting an undefined variable isn't an
// error.
func (s *Store) Delete(ctx context.Context, name string) error {
	log.Debug("delete", "bucket", string(s.bucket), "name", name)
	return s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}

// All returns every variable's value.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	vs, err := s.Variables(ctx)
	if err != nil {
		return nil, err
	}
	acc := make(map[string]string, len(vs))
	for _, v := range vs {
		acc[v.Name] = v.Value
	}
	return acc, nil
}

// Variables returns every variable sorted by name.
func (s *Store) Variables(ctx context.Context) ([]*Variable, error) {
	acc := make([]*Variable, 0, 32)
	err := s.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, js := c.First(); k != nil; k, js = c.Next() {
			v := &Variable{Name: string(k)}
			if err := json.Unmarshal(js, v); err != nil {
				return fmt.Errorf("variable %s: %w", k, err)
			}
			acc = append(acc, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(acc, func(i, j int) bool { return acc[i].Name < acc[j].Name })
	return acc, nil
}

// Dereference implements text.Dereferencer.  A context.Context passed
// as ctx is used for the lookup.
func (s *Store) Dereference(name string, ctx interface{}) (string, bool, error) {
	c, is := ctx.(context.Context)
	if !is {
		c = context.Background()
	}
	return s.Get(c, name)
}

var _ text.Dereferencer = (*Store)(nil)
