/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"k8s.io/utils/ptr"
)

func generateRandomName(prefix string) string {
	bytes := make([]byte, 4) // 8 hex characters
	_, _ = rand.Read(bytes)

	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(bytes))
}

func GenerateTestID() string {
	return generateRandomName("test")
}

// PostPayloadBuilder builds post payloads for testing.
type PostPayloadBuilder struct {
	post NewPost
}

// NewPostPayload creates a builder with a unique title and body owned by userID.
func NewPostPayload(userID int) *PostPayloadBuilder {
	return &PostPayloadBuilder{
		post: NewPost{
			UserID: userID,
			Title:  generateRandomName("title"),
			Body:   generateRandomName("body"),
		},
	}
}

func (b *PostPayloadBuilder) WithTitle(title string) *PostPayloadBuilder {
	b.post.Title = title
	return b
}

func (b *PostPayloadBuilder) WithBody(body string) *PostPayloadBuilder {
	b.post.Body = body
	return b
}

// Build returns the creation payload.
func (b *PostPayloadBuilder) Build() NewPost {
	return b.post
}

// BuildUpdate returns the payload as a full replacement update.
func (b *PostPayloadBuilder) BuildUpdate() PostUpdate {
	return PostUpdate{
		UserID: ptr.To(b.post.UserID),
		Title:  ptr.To(b.post.Title),
		Body:   ptr.To(b.post.Body),
	}
}
