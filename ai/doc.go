// Copyright 2025 Poiesic Systems
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


// Package ai provides abstractions for the embedding services used in Indexit.
//
// This package defines the Embedder interface for text embedding generation.
// It follows the dependency inversion principle, allowing the build pipeline
// and search layer to depend on abstractions rather than concrete
// implementations.
//
// # Implementation Packages
//
// The ai package includes three implementation sub-packages:
//
//   - ai/openai: Production implementation for OpenAI-compatible APIs
//     (OpenAI, Ollama, LocalAI, vLLM)
//   - ai/googleai: Production implementation for the Google AI (Gemini) API
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder, googleai.NewEmbedder) return the
// ai.Embedder INTERFACE to enforce abstraction and prevent accidental
// coupling to concrete implementations.
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// Test utility constructors (mock.NewMockEmbedder) return CONCRETE types to
// enable test assertions and behavior injection via the mock's public
// surface (CallCount, EmbedTextsFunc, Reset).
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	mockEmbed.EmbedTextsFunc = ...       // needs concrete type
//	count := mockEmbed.CallCount()       // test assertion
//
// # Error Classification
//
// Embedding providers fail in two ways that callers must treat differently:
// rate limits and server hiccups deserve a retry, while bad credentials or
// an unknown model never succeed no matter how often they are retried.
// Classify sorts a provider error into these classes, wrapping retryable
// failures in core.ErrTransient:
//
//	vectors, err := embedder.EmbedTexts(ctx, texts)
//	if err != nil {
//	    return ai.Classify(err)  // transient failures become core.ErrTransient
//	}
//
// # Usage Example
//
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithModel("embeddinggemma"),
//	)
//	embedder, err := openai.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vectors, err := embedder.EmbedTexts(ctx, []string{"Hello world"})
package ai
