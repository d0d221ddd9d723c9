// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging configures log/slog for recipectl and recipemapd.
//
// Every record is JSON on stderr and carries the module and version of the
// binary that wrote it. Debug level also records the source location.
//
//	logging.SetDefaultStructuredLogger("recipemapd", version)
//	slog.Info("catalog applied", "backends", 12, "recipes", 48113)
//
// produces
//
//	{"time":"...","level":"INFO","msg":"catalog applied","module":"recipemapd","version":"1.0.0","backends":12,"recipes":48113}
//
// Levels are debug, info, warn (or warning) and error, matched without
// regard to case; anything else means info. SetDefaultStructuredLogger reads
// the level from LOG_LEVEL, SetDefaultStructuredLoggerWithLevel takes it
// from a flag and falls back to LOG_LEVEL when the flag is empty.
//
// NewLogLogger bridges the default handler to a *log.Logger for APIs that
// still want one, such as http.Server.ErrorLog.
package logging
