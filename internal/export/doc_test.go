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
	"path/filepath"
	"testing"

	"gocrop/internal/cropper"
)

func testDocument() Document {
	return NewDocument("photo.jpg", 800, 600,
		cropper.CropData{X: 100, Y: 75, Width: 600, Height: 450},
		cropper.RotationData{Rotation: 12.5, Base: cropper.Base90},
	)
}

func TestValidateDocumentAccepts(t *testing.T) {
	raw, err := json.Marshal(testDocument())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ValidateDocument(raw); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}
}

func TestValidateDocumentRejectsRotationRange(t *testing.T) {
	doc := testDocument()
	doc.Rotation.Rotation = 90
	raw, _ := json.Marshal(doc)
	if err := ValidateDocument(raw); err == nil {
		t.Fatalf("rotation outside [-45,45] accepted")
	}
}

func TestValidateDocumentRejectsBadBase(t *testing.T) {
	doc := testDocument()
	doc.Rotation.Base = 45
	raw, _ := json.Marshal(doc)
	if err := ValidateDocument(raw); err == nil {
		t.Fatalf("baseRotation 45 accepted")
	}
}

func TestValidateDocumentRejectsMissingField(t *testing.T) {
	if err := ValidateDocument([]byte(`{"docVersion": 1}`)); err == nil {
		t.Fatalf("truncated document accepted")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crop.json")
	in := testDocument()
	if err := WriteDocument(path, in); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	got, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if got.Crop != in.Crop || got.Rotation != in.Rotation || got.Source != in.Source {
		t.Fatalf("round trip mismatch: %+v != %+v", got, in)
	}
	if got.DocVersion != 1 {
		t.Fatalf("docVersion = %d", got.DocVersion)
	}
}

func TestWriteDocumentRefusesInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crop.json")
	doc := testDocument()
	doc.Rotation.Rotation = 60
	if err := WriteDocument(path, doc); err == nil {
		t.Fatalf("invalid document written")
	}
}
