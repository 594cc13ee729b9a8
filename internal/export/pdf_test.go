/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteProofPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proof.pdf")
	if err := WriteProofPDF(path, testDocument(), PDFOptions{Title: "test proof"}); err != nil {
		t.Fatalf("WriteProofPDF: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("output is not a PDF (starts with %q)", string(data[:8]))
	}
}

func TestWriteProofPDFRejectsDegenerate(t *testing.T) {
	doc := testDocument()
	doc.Source.Width = 0
	path := filepath.Join(t.TempDir(), "proof.pdf")
	if err := WriteProofPDF(path, doc, PDFOptions{}); err == nil {
		t.Fatalf("degenerate source accepted")
	}
}
