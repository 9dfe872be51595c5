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

//nolint:revive // naming conventions acceptable in test code
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/unikorn-cloud/blog-api-tests/pkg/openapi"
)

// APIClient is a typed façade over the request wrapper. It composes URLs and
// decodes bodies, retries and status handling belong to the wrapper.
type APIClient struct {
	baseURL   string
	request   *RequestWrapper
	endpoints *Endpoints
	validator *openapi.Validator
}

func NewAPIClient(baseURL string, request *RequestWrapper) *APIClient {
	return &APIClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		request:   request,
		endpoints: NewEndpoints(),
	}
}

// WithValidator checks every typed response against the contract.
func (c *APIClient) WithValidator(validator *openapi.Validator) *APIClient {
	c.validator = validator
	return c
}

func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// GetUsers lists all users.
func (c *APIClient) GetUsers(ctx context.Context) ([]User, error) {
	resp, err := c.request.Get(ctx, c.baseURL+c.endpoints.ListUsers())
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var users []User
	if err := c.decode(http.MethodGet, openapi.PathUsers, resp, &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return users, nil
}

// GetUser retrieves a specific user.
func (c *APIClient) GetUser(ctx context.Context, userID int) (*User, error) {
	resp, err := c.request.Get(ctx, c.baseURL+c.endpoints.GetUser(userID))
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", userID, err)
	}

	var user User
	if err := c.decode(http.MethodGet, openapi.PathUser, resp, &user); err != nil {
		return nil, fmt.Errorf("getting user %d: %w", userID, err)
	}

	return &user, nil
}

// GetUserPosts lists the posts owned by a user.
func (c *APIClient) GetUserPosts(ctx context.Context, userID int) ([]Post, error) {
	resp, err := c.request.Get(ctx, c.baseURL+c.endpoints.ListUserPosts(userID))
	if err != nil {
		return nil, fmt.Errorf("listing posts for user %d: %w", userID, err)
	}

	var posts []Post
	if err := c.decode(http.MethodGet, openapi.PathUserPosts, resp, &posts); err != nil {
		return nil, fmt.Errorf("listing posts for user %d: %w", userID, err)
	}

	return posts, nil
}

// GetPosts lists all posts.
func (c *APIClient) GetPosts(ctx context.Context) ([]Post, error) {
	resp, err := c.request.Get(ctx, c.baseURL+c.endpoints.ListPosts())
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	var posts []Post
	if err := c.decode(http.MethodGet, openapi.PathPosts, resp, &posts); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	return posts, nil
}

// GetPost retrieves a specific post.
func (c *APIClient) GetPost(ctx context.Context, postID int) (*Post, error) {
	resp, err := c.request.Get(ctx, c.baseURL+c.endpoints.GetPost(postID))
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", postID, err)
	}

	var post Post
	if err := c.decode(http.MethodGet, openapi.PathPost, resp, &post); err != nil {
		return nil, fmt.Errorf("getting post %d: %w", postID, err)
	}

	return &post, nil
}

// CreatePost creates a post, the response is returned alongside the decoded
// body so callers can assert on the status.
func (c *APIClient) CreatePost(ctx context.Context, post NewPost) (*Response, *Post, error) {
	resp, err := c.request.Post(ctx, c.baseURL+c.endpoints.CreatePost(), post)
	if err != nil {
		return resp, nil, fmt.Errorf("creating post: %w", err)
	}

	var created Post
	if err := c.decode(http.MethodPost, openapi.PathPosts, resp, &created); err != nil {
		return resp, nil, fmt.Errorf("creating post: %w", err)
	}

	return resp, &created, nil
}

// UpdatePost replaces the fields of a post that are set in update.
func (c *APIClient) UpdatePost(ctx context.Context, postID int, update PostUpdate) (*Response, *Post, error) {
	resp, err := c.request.Put(ctx, c.baseURL+c.endpoints.UpdatePost(postID), update)
	if err != nil {
		return resp, nil, fmt.Errorf("updating post %d: %w", postID, err)
	}

	var updated Post
	if err := c.decode(http.MethodPut, openapi.PathPost, resp, &updated); err != nil {
		return resp, nil, fmt.Errorf("updating post %d: %w", postID, err)
	}

	return resp, &updated, nil
}

// RawGet performs an unvalidated GET for negative testing. Relative paths are
// resolved against the base URL.
func (c *APIClient) RawGet(ctx context.Context, path string) (*Response, error) {
	return c.request.GetUnvalidated(ctx, c.resolve(path))
}

// RawPut performs an unvalidated PUT for negative testing.
func (c *APIClient) RawPut(ctx context.Context, path string, body any) (*Response, error) {
	return c.request.PutUnvalidated(ctx, c.resolve(path), body)
}

func (c *APIClient) resolve(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func (c *APIClient) decode(method, pathTemplate string, resp *Response, v any) error {
	if c.validator != nil {
		if err := c.validator.ValidateResponse(method, pathTemplate, resp.StatusCode, resp.Body); err != nil {
			return err
		}
	}

	return resp.JSON(v)
}
