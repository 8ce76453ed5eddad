/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crpt

import (
	"encoding/json"
)

// ContentTypeJSON is the content type produced by JSONSerializer.
const ContentTypeJSON = "application/json"

// Serializer converts a document to the request body.
type Serializer interface {
	Serialize(doc *Document) ([]byte, error)
	ContentType() string
}

// JSONSerializer encodes documents as JSON.
type JSONSerializer struct{}

// Serialize implements Serializer.
func (JSONSerializer) Serialize(doc *Document) ([]byte, error) {
	return json.Marshal(doc)
}

// ContentType implements Serializer.
func (JSONSerializer) ContentType() string {
	return ContentTypeJSON
}
