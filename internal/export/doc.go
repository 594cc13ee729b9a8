/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"gocrop/internal/cropper"
)

// Document is the machine-readable record of one committed crop, written
// alongside exported images so downstream tooling can reproduce the edit.
type Document struct {
	DocVersion int                  `json:"docVersion"`
	Source     SourceInfo           `json:"source"`
	Crop       cropper.CropData     `json:"crop"`
	Rotation   cropper.RotationData `json:"rotation"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// SourceInfo identifies the image the crop applies to.
type SourceInfo struct {
	Path   string  `json:"path,omitempty"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// docSchema validates the crop document wire format.
const docSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["docVersion", "source", "crop", "rotation", "createdAt"],
	"properties": {
		"docVersion": {"type": "integer", "minimum": 1},
		"source": {
			"type": "object",
			"required": ["width", "height"],
			"properties": {
				"path": {"type": "string"},
				"width": {"type": "number", "minimum": 0},
				"height": {"type": "number", "minimum": 0}
			}
		},
		"crop": {
			"type": "object",
			"required": ["x", "y", "width", "height"],
			"properties": {
				"x": {"type": "number"},
				"y": {"type": "number"},
				"width": {"type": "number", "minimum": 0},
				"height": {"type": "number", "minimum": 0}
			}
		},
		"rotation": {
			"type": "object",
			"required": ["rotation", "baseRotation"],
			"properties": {
				"rotation": {"type": "number", "minimum": -45, "maximum": 45},
				"baseRotation": {"enum": [0, 90, 180, 270]}
			}
		},
		"createdAt": {"type": "string"}
	}
}`

// NewDocument assembles a document for a committed state.
func NewDocument(srcPath string, srcW, srcH float64, crop cropper.CropData, rot cropper.RotationData) Document {
	return Document{
		DocVersion: 1,
		Source:     SourceInfo{Path: srcPath, Width: srcW, Height: srcH},
		Crop:       crop,
		Rotation:   rot,
		CreatedAt:  time.Now().UTC(),
	}
}

// ValidateDocument checks raw JSON against the crop document schema.
func ValidateDocument(raw []byte) error {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(docSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !res.Valid() {
		var b strings.Builder
		for i, e := range res.Errors() {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(e.String())
		}
		return fmt.Errorf("invalid crop document: %s", b.String())
	}
	return nil
}

// WriteDocument validates and writes the document as indented JSON.
func WriteDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal crop document: %w", err)
	}
	if err := ValidateDocument(data); err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadDocument loads and validates a document from disk.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read crop document: %w", err)
	}
	if err := ValidateDocument(data); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse crop document: %w", err)
	}
	return doc, nil
}
