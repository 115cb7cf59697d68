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


// Package googleai provides a text embedder backed by the Google AI API.
//
// This package implements the ai.Embedder interface using the langchaingo
// library's Gemini client. Unlike OpenAI-compatible providers, the endpoint
// is fixed by the SDK, so only the API key and model are configurable.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderGoogleAI),
//	    ai.WithModel("text-embedding-004"),
//	    ai.WithAPIKey(os.Getenv("GOOGLE_API_KEY")),
//	)
//
//	embedder, err := googleai.NewEmbedder(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vectors, err := embedder.EmbedTexts(ctx, []string{"sample text"})
package googleai
