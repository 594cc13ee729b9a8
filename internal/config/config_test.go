/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Cropper.MinCropWidth <= 0 || cfg.Cropper.MinCropHeight <= 0 {
		t.Fatalf("defaults have no minimum crop: %+v", cfg.Cropper)
	}
	if cfg.Cropper.CommitDebounceMs != 500 {
		t.Fatalf("default debounce = %d, want 500", cfg.Cropper.CommitDebounceMs)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("default log level = %q", cfg.Logging.Level)
	}
}

func TestEnvOverridesMinCrop(t *testing.T) {
	t.Setenv(EnvMinCropWidth, "120")
	t.Setenv(EnvMinCropHeight, "96")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cropper.MinCropWidth != 120 || cfg.Cropper.MinCropHeight != 96 {
		t.Fatalf("env overrides ignored: %+v", cfg.Cropper)
	}
}

func TestEnvOverridesDebounce(t *testing.T) {
	t.Setenv(EnvCommitDebounceMs, "250")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cropper.CommitDebounceMs != 250 {
		t.Fatalf("debounce override ignored: %+v", cfg.Cropper)
	}
}

func TestInvalidEnvValuesAreIgnored(t *testing.T) {
	t.Setenv(EnvMinCropWidth, "not-a-number")
	t.Setenv(EnvCommitDebounceMs, "-5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := Defaults()
	if cfg.Cropper.MinCropWidth != def.Cropper.MinCropWidth {
		t.Fatalf("bad env value applied: %+v", cfg.Cropper)
	}
	if cfg.Cropper.CommitDebounceMs != def.Cropper.CommitDebounceMs {
		t.Fatalf("negative debounce applied: %+v", cfg.Cropper)
	}
}

func TestMergeKeepsFileValues(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Cropper.MinCropWidth = 200
	src.Logging.Level = "DEBUG"
	src.Logging.File = " /tmp/gocrop.log "
	mergeInto(&dst, &src)
	if dst.Cropper.MinCropWidth != 200 {
		t.Fatalf("merge dropped min crop width: %+v", dst.Cropper)
	}
	if dst.Logging.Level != "debug" {
		t.Fatalf("merge did not normalize level: %q", dst.Logging.Level)
	}
	if dst.Logging.File != "/tmp/gocrop.log" {
		t.Fatalf("merge did not trim file path: %q", dst.Logging.File)
	}
}

func TestMergeIgnoresZeroValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig // all zero
	mergeInto(&dst, &src)
	def := Defaults()
	if dst.Cropper != def.Cropper {
		t.Fatalf("zero src overwrote cropper defaults: %+v", dst.Cropper)
	}
}
