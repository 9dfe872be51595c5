/*
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

package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	. "github.com/onsi/gomega" //nolint:revive // matcher DSL
	"k8s.io/utils/ptr"

	"github.com/unikorn-cloud/blog-api-tests/test/api"
)

func (s *Scenario) registerPositiveSteps(sc *godog.ScenarioContext) {
	sc.Given(`^I get all users from the API$`, s.getAllUsers)
	sc.When(`^I select a random user$`, s.selectRandomUser)
	sc.Then(`^I should log the user's email address$`, s.logUserEmail)
	sc.When(`^I get all posts for the selected user$`, s.getSelectedUserPosts)
	sc.Then(`^all posts should have valid Post IDs between 1 and 100$`, s.postIDsAreValid)
	sc.Then(`^I should log the title and ID for each post$`, s.logUserPosts)
	sc.When(`^I select a random post from the user's posts$`, s.selectRandomPost)
	sc.When(`^I modify the post title to "([^"]*)"$`, s.modifyPostTitle)
	sc.Then(`^I should verify the post was updated$`, s.postWasUpdated)
	sc.Then(`^I should log the updated post ID and title$`, s.logUpdatedPost)
	sc.When(`^I create a new post with title "([^"]*)" and body "([^"]*)"$`, s.createPost)
	sc.Then(`^the post creation should return the correct response$`, s.postCreationStatus)
	sc.Then(`^I should verify the created post has valid data$`, s.createdPostIsValid)
}

func (s *Scenario) getAllUsers(ctx context.Context) error {
	users, err := s.client().GetUsers(ctx)
	if err != nil {
		return err
	}

	if err := api.Assert(users, Not(BeEmpty()), "the service should return users"); err != nil {
		return err
	}

	s.allUsers = users

	api.LogSuccess(s.out, "Retrieved %d users from API", len(users))

	return nil
}

func (s *Scenario) selectRandomUser() error {
	user, err := api.RandomUser(s.allUsers)
	if err != nil {
		return fmt.Errorf("selecting user: %w", err)
	}

	if err := api.Assert(user.ID, BeNumerically(">", 0), "selected user ID"); err != nil {
		return err
	}

	s.selectedUser = &user

	api.LogSuccess(s.out, "Selected random user: %s (ID: %d)", user.Name, user.ID)

	return nil
}

func (s *Scenario) logUserEmail() error {
	if err := s.requireUser(); err != nil {
		return err
	}

	api.LogSimple(s.out, "User Email", s.selectedUser.Email)

	return api.Assert(s.selectedUser.Email, ContainSubstring("@"), "user email")
}

func (s *Scenario) getSelectedUserPosts(ctx context.Context) error {
	if err := s.requireUser(); err != nil {
		return err
	}

	posts, err := s.client().GetUserPosts(ctx, s.selectedUser.ID)
	if err != nil {
		return err
	}

	if err := api.Assert(posts, Not(BeEmpty()), "user %d should own posts", s.selectedUser.ID); err != nil {
		return err
	}

	s.userPosts = posts

	api.LogSuccess(s.out, "Retrieved %d posts for user %d", len(posts), s.selectedUser.ID)

	return nil
}

func (s *Scenario) postIDsAreValid() error {
	for _, post := range s.userPosts {
		if err := api.Assert(api.ValidatePostID(post.ID), BeTrue(), "post ID %d", post.ID); err != nil {
			return err
		}
	}

	api.LogSuccess(s.out, "All %d posts have valid IDs (%d-%d)", len(s.userPosts), api.MinPostID, api.MaxPostID)

	return nil
}

func (s *Scenario) logUserPosts() error {
	api.LogBanner(s.out, "User's Posts")

	for _, post := range s.userPosts {
		fmt.Fprintf(s.out, "Post ID: %d | Title: %s\n", post.ID, post.Title)
	}

	api.LogRule(s.out)

	return nil
}

func (s *Scenario) selectRandomPost() error {
	post, err := api.RandomPost(s.userPosts)
	if err != nil {
		return fmt.Errorf("selecting post: %w", err)
	}

	s.selectedPost = &post

	api.LogSuccess(s.out, "Selected random post: ID %d", post.ID)

	return nil
}

func (s *Scenario) modifyPostTitle(ctx context.Context, title string) error {
	if s.selectedPost == nil {
		return fmt.Errorf("%w: no post selected", api.ErrAssertion)
	}

	s.updatedPostTitle = title

	resp, updated, err := s.client().UpdatePost(ctx, s.selectedPost.ID, api.PostUpdate{
		UserID: ptr.To(s.selectedPost.UserID),
		Title:  ptr.To(title),
		Body:   ptr.To(s.selectedPost.Body),
	})
	if err != nil {
		return err
	}

	if err := api.Assert(resp.OK(), BeTrue(), "update status %d", resp.StatusCode); err != nil {
		return err
	}

	s.selectedPost = updated

	api.LogSuccess(s.out, "Modified post %d title", updated.ID)

	return nil
}

func (s *Scenario) postWasUpdated() error {
	if s.selectedPost == nil {
		return fmt.Errorf("%w: no post selected", api.ErrAssertion)
	}

	if err := api.Assert(s.selectedPost.Title, Equal(s.updatedPostTitle), "updated title"); err != nil {
		return err
	}

	api.LogSuccess(s.out, "Post title verified: %q", s.selectedPost.Title)

	return nil
}

func (s *Scenario) logUpdatedPost() error {
	if s.selectedPost == nil {
		return fmt.Errorf("%w: no post selected", api.ErrAssertion)
	}

	api.LogBanner(s.out, "Updated Post")
	api.LogSimple(s.out, "Post ID", s.selectedPost.ID)
	api.LogSimple(s.out, "Title", s.selectedPost.Title)
	api.LogRule(s.out)

	return nil
}

func (s *Scenario) createPost(ctx context.Context, title, body string) error {
	if err := s.requireUser(); err != nil {
		return err
	}

	payload := api.NewPostPayload(s.selectedUser.ID).WithTitle(title).WithBody(body).Build()

	resp, post, err := s.client().CreatePost(ctx, payload)
	if err != nil {
		return err
	}

	s.created = &createdPost{
		response: resp,
		body:     post,
	}

	api.LogSuccess(s.out, "Created new post for user %d", s.selectedUser.ID)

	return nil
}

func (s *Scenario) postCreationStatus() error {
	if s.created == nil {
		return fmt.Errorf("%w: no post created", api.ErrAssertion)
	}

	if err := api.Assert(s.created.response.StatusCode, Equal(201), "creation status"); err != nil {
		return err
	}

	api.LogSuccess(s.out, "Received correct response status: %d", s.created.response.StatusCode)

	return nil
}

func (s *Scenario) createdPostIsValid() error {
	if s.created == nil {
		return fmt.Errorf("%w: no post created", api.ErrAssertion)
	}

	if err := s.requireUser(); err != nil {
		return err
	}

	post := s.created.body
	if post == nil {
		return fmt.Errorf("%w: creation returned no body", api.ErrAssertion)
	}

	if err := api.Assert(*post, And(
		HaveField("ID", Not(BeZero())),
		HaveField("UserID", Equal(s.selectedUser.ID)),
		HaveField("Title", Not(BeEmpty())),
		HaveField("Body", Not(BeEmpty())),
	), "created post"); err != nil {
		return err
	}

	api.LogBanner(s.out, "Created Post")
	api.LogSimple(s.out, "Post ID", post.ID)
	api.LogSimple(s.out, "User ID", post.UserID)
	api.LogSimple(s.out, "Title", post.Title)
	api.LogSimple(s.out, "Body", post.Body)
	api.LogRule(s.out)

	api.LogSuccess(s.out, "All API operations completed successfully!")

	return nil
}

func (s *Scenario) requireUser() error {
	if s.selectedUser == nil {
		return fmt.Errorf("%w: no user selected", api.ErrAssertion)
	}

	return nil
}
