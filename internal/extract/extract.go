package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/2beens/mongoextract/internal/mongodb"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	SampleLimit     = 3
	ArchiveFileName = "collections.zip"
)

// Source is the part of the mongo client extraction needs.
type Source interface {
	ListCollectionNames(ctx context.Context, database string) ([]string, error)
	SampleDocuments(ctx context.Context, database, collection string, limit int) ([]bson.Raw, error)
	AllDocuments(ctx context.Context, database, collection string) ([]bson.Raw, error)
}

type Request struct {
	Database       string
	Collection     string
	AllCollections bool
	LimitTo3       bool
}

// CollectionNames lists the collections an extraction covers.
func CollectionNames(ctx context.Context, src Source, req Request) ([]string, error) {
	if !req.AllCollections {
		return []string{req.Collection}, nil
	}
	return src.ListCollectionNames(ctx, req.Database)
}

func Fetch(ctx context.Context, src Source, req Request, collection string) ([]bson.Raw, error) {
	if req.LimitTo3 {
		return src.SampleDocuments(ctx, req.Database, collection, SampleLimit)
	}
	return src.AllDocuments(ctx, req.Database, collection)
}

// JSONFileName is the attachment name for a single collection extraction.
func JSONFileName(collection string) string {
	return escapeComponent(collection) + ".json"
}

const unreservedMarks = "-_.!~*'()"

// escapeComponent percent-encodes every byte except letters, digits and unreservedMarks,
// the same set browsers leave alone in encodeURIComponent.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			strings.IndexByte(unreservedMarks, c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

// WriteJSON writes documents as an indented JSON array of relaxed Extended JSON values.
func WriteJSON(w io.Writer, documents []bson.Raw) error {
	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, d := range documents {
		if i > 0 {
			compact.WriteByte(',')
		}
		rendered, err := mongodb.ToJSON(d)
		if err != nil {
			return err
		}
		compact.Write(rendered)
	}
	compact.WriteByte(']')

	var indented bytes.Buffer
	if err := json.Indent(&indented, compact.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("indent json: %w", err)
	}
	if _, err := indented.WriteTo(w); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteZip streams one <collection>.json entry per collection, fetching each
// collection only when its entry is about to be written. Every entry is flushed
// to w before the next collection is fetched; nothing is written to w before the
// first collection has been fetched.
func WriteZip(ctx context.Context, w io.Writer, src Source, req Request, collections []string) error {
	archive := zip.NewWriter(w)
	var entryCompressor *flate.Writer
	archive.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		fw, err := flate.NewWriter(out, flate.BestCompression)
		entryCompressor = fw
		return fw, err
	})

	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			return err
		}

		documents, err := Fetch(ctx, src, req, collection)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", collection, err)
		}

		entry, err := archive.CreateHeader(&zip.FileHeader{
			Name:     collection + ".json",
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", collection, err)
		}
		if err := WriteJSON(entry, documents); err != nil {
			return fmt.Errorf("write zip entry %s: %w", collection, err)
		}
		if entryCompressor != nil {
			if err := entryCompressor.Flush(); err != nil {
				return fmt.Errorf("flush zip entry %s: %w", collection, err)
			}
		}
		if err := archive.Flush(); err != nil {
			return fmt.Errorf("flush zip: %w", err)
		}
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}
