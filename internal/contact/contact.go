// Package contact holds the flat, per-person field set extracted from a vCard.
package contact

import "encoding/json"

// Field is one marker value of a contact.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Contact maps marker names to extracted values, in the order they were
// first set. UID is empty until the unique-ID step assigns it.
type Contact struct {
	UID    string
	values map[string]string
	order  []string
}

// New returns an empty contact.
func New() *Contact {
	return &Contact{values: make(map[string]string)}
}

// Set stores value under name; a repeated name keeps its first position.
func (c *Contact) Set(name, value string) {
	if _, ok := c.values[name]; !ok {
		c.order = append(c.order, name)
	}
	c.values[name] = value
}

// Get returns the value stored under name.
func (c *Contact) Get(name string) (string, bool) {
	value, ok := c.values[name]
	return value, ok
}

// Fields returns the contact's fields in insertion order.
func (c *Contact) Fields() []Field {
	fields := make([]Field, 0, len(c.order))
	for _, name := range c.order {
		fields = append(fields, Field{Name: name, Value: c.values[name]})
	}
	return fields
}

// Len returns the number of fields.
func (c *Contact) Len() int {
	return len(c.order)
}

// MarshalJSON renders {"uid": ..., "fields": [...]} keeping field order.
func (c *Contact) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UID    string  `json:"uid"`
		Fields []Field `json:"fields"`
	}{UID: c.UID, Fields: c.Fields()})
}
