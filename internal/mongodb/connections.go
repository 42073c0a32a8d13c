package mongodb

import (
	"fmt"
	"net/http"
	"strings"
)

const MaxPreconfiguredConnections = 4

// PreconfiguredConnection is a named connection string coming from the environment.
type PreconfiguredConnection struct {
	ID   string
	Name string
	URI  string
}

// ConnectionOption is the public view of a preconfigured connection, without the URI.
type ConnectionOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ResolveError struct {
	Status  int
	Message string
}

func (e *ResolveError) Error() string {
	return e.Message
}

func badRequest(message string) *ResolveError {
	return &ResolveError{Status: http.StatusBadRequest, Message: message}
}

type Connections struct {
	preconfigured []PreconfiguredConnection
}

func NewConnections(preconfigured ...PreconfiguredConnection) *Connections {
	return &Connections{preconfigured: preconfigured}
}

// LoadPreconfigured reads MONGODB_URI<n> and MONGODB_URI<n>_NAME for n in 1..4.
// Entries with either value empty are skipped.
func LoadPreconfigured(getenv func(string) string) *Connections {
	var preconfigured []PreconfiguredConnection
	for i := 1; i <= MaxPreconfiguredConnections; i++ {
		uri := strings.TrimSpace(getenv(fmt.Sprintf("MONGODB_URI%d", i)))
		name := strings.TrimSpace(getenv(fmt.Sprintf("MONGODB_URI%d_NAME", i)))
		if uri == "" || name == "" {
			continue
		}
		preconfigured = append(preconfigured, PreconfiguredConnection{
			ID:   fmt.Sprintf("preconfigured-%d", i),
			Name: name,
			URI:  uri,
		})
	}
	return NewConnections(preconfigured...)
}

func (c *Connections) Options() []ConnectionOption {
	options := make([]ConnectionOption, 0, len(c.preconfigured))
	for _, p := range c.preconfigured {
		options = append(options, ConnectionOption{ID: p.ID, Name: p.Name})
	}
	return options
}

func (c *Connections) find(id string) (PreconfiguredConnection, bool) {
	for _, p := range c.preconfigured {
		if p.ID == id {
			return p, true
		}
	}
	return PreconfiguredConnection{}, false
}

// Resolve picks the preconfigured connection when an id is given, otherwise the user supplied URI.
func (c *Connections) Resolve(mongoURI, preconfiguredID string) (string, error) {
	if id := strings.TrimSpace(preconfiguredID); id != "" {
		preconfigured, ok := c.find(id)
		if !ok {
			return "", badRequest("The selected MongoDB connection is not available. Please choose another option.")
		}
		if preconfigured.URI == "" {
			return "", badRequest("MongoDB URI is not configured for the selected option. Update your environment variables or use a custom URI.")
		}
		return preconfigured.URI, nil
	}

	uri := strings.TrimSpace(mongoURI)
	if uri == "" {
		return "", badRequest("MongoDB URI is required")
	}
	return uri, nil
}
