package explorer

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/2beens/mongoextract/pkg"

	"github.com/go-playground/validator/v10"
)

const maxRequestBodyBytes = 16 << 20

var requestValidator = newRequestValidator()

// newRequestValidator reports fields by their json names.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var errInvalidBody = errors.New("Invalid request body")

type ConnectionRequest struct {
	MongoURI                string `json:"mongoUri" validate:"max=4096"`
	PreconfiguredMongoURIID string `json:"preconfiguredMongoUriId" validate:"max=64"`
}

type DatabaseRequest struct {
	ConnectionRequest
	DatabaseName string `json:"databaseName" validate:"max=63"`
}

type CollectionRequest struct {
	DatabaseRequest
	CollectionName string           `json:"collectionName" validate:"max=255"`
	AllCollections pkg.FlexibleBool `json:"allCollections"`
}

type SearchRequest struct {
	DatabaseRequest
	CollectionName string `json:"collectionName" validate:"max=255"`
	Mode           string `json:"mode"`
	Query          string `json:"query" validate:"max=65536"`
	Text           string `json:"text" validate:"max=4096"`
}

type EditRequest struct {
	DatabaseRequest
	CollectionName string          `json:"collectionName" validate:"max=255"`
	Action         string          `json:"action"`
	Document       json.RawMessage `json:"document"`
}

type ExtractRequest struct {
	DatabaseRequest
	CollectionName string           `json:"collectionName" validate:"max=255"`
	AllCollections pkg.FlexibleBool `json:"allCollections"`
	LimitTo3       pkg.FlexibleBool `json:"limitTo3"`
}

func (r *ConnectionRequest) trim() {
	r.MongoURI = strings.TrimSpace(r.MongoURI)
	r.PreconfiguredMongoURIID = strings.TrimSpace(r.PreconfiguredMongoURIID)
}

func (r *DatabaseRequest) trim() {
	r.ConnectionRequest.trim()
	r.DatabaseName = strings.TrimSpace(r.DatabaseName)
}

type trimmer interface {
	trim()
}

// decodeRequest reads the JSON body into req, trims the string fields and checks the length limits.
func decodeRequest(w http.ResponseWriter, r *http.Request, req trimmer) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(req); err != nil {
		return errInvalidBody
	}
	req.trim()
	if err := requestValidator.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return errors.New("Field " + validationErrs[0].Field() + " is too long")
		}
		return errInvalidBody
	}
	return nil
}

func (r *CollectionRequest) trim() {
	r.DatabaseRequest.trim()
	r.CollectionName = strings.TrimSpace(r.CollectionName)
}

func (r *SearchRequest) trim() {
	r.DatabaseRequest.trim()
	r.CollectionName = strings.TrimSpace(r.CollectionName)
	r.Query = strings.TrimSpace(r.Query)
	r.Text = strings.TrimSpace(r.Text)
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
}

func (r *EditRequest) trim() {
	r.DatabaseRequest.trim()
	r.CollectionName = strings.TrimSpace(r.CollectionName)
	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
}

func (r *ExtractRequest) trim() {
	r.DatabaseRequest.trim()
	r.CollectionName = strings.TrimSpace(r.CollectionName)
}
