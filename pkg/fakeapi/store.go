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

package fakeapi

import (
	"fmt"
)

// User mirrors the user resource of the blog service.
type User struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Website  string   `json:"website"`
	Address  *Address `json:"address"`
	Company  *Company `json:"company"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// Post mirrors the post resource of the blog service.
type Post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

const (
	postsPerUser = 10

	// NextPostID is what the service answers for every create, writes are
	// never persisted.
	NextPostID = 101
)

// Store is the read-only seed data. Writes are echoed back but not kept,
// matching the behaviour of the real service.
type Store struct {
	users []User
	posts []Post
}

//nolint:gochecknoglobals
var seedUsers = []struct {
	name, username, email, city string
}{
	{"Leanne Graham", "Bret", "Sincere@april.biz", "Gwenborough"},
	{"Ervin Howell", "Antonette", "Shanna@melissa.tv", "Wisokyburgh"},
	{"Clementine Bauch", "Samantha", "Nathan@yesenia.net", "McKenziehaven"},
	{"Patricia Lebsack", "Karianne", "Julianne.OConner@kory.org", "South Elvis"},
	{"Chelsey Dietrich", "Kamren", "Lucio_Hettinger@annie.ca", "Roscoeview"},
	{"Mrs. Dennis Schulist", "Leopoldo_Corkery", "Karley_Dach@jasper.info", "South Christy"},
	{"Kurtis Weissnat", "Elwyn.Skiles", "Telly.Hoeger@billy.biz", "Howemouth"},
	{"Nicholas Runolfsdottir V", "Maxime_Nienow", "Sherwood@rosamond.me", "Aliyaview"},
	{"Glenna Reichert", "Delphine", "Chaim_McDermott@dana.io", "Bartholomebury"},
	{"Clementina DuBuque", "Moriah.Stanton", "Rey.Padberg@karina.biz", "Lebsackbury"},
}

// NewStore returns the standard data set: ten users owning ten posts each.
func NewStore() *Store {
	s := &Store{
		users: make([]User, 0, len(seedUsers)),
		posts: make([]Post, 0, len(seedUsers)*postsPerUser),
	}

	for i, seed := range seedUsers {
		userID := i + 1

		s.users = append(s.users, User{
			ID:       userID,
			Name:     seed.name,
			Username: seed.username,
			Email:    seed.email,
			Phone:    fmt.Sprintf("1-770-736-80%02d", userID),
			Website:  fmt.Sprintf("%s.example.org", seed.username),
			Address: &Address{
				Street:  fmt.Sprintf("%d Kulas Light", 100+userID),
				Suite:   fmt.Sprintf("Apt. %d", 500+userID),
				City:    seed.city,
				Zipcode: fmt.Sprintf("92998-38%02d", userID),
			},
			Company: &Company{
				Name:        fmt.Sprintf("%s Group", seed.username),
				CatchPhrase: "Multi-layered client-server neural-net",
				BS:          "harness real-time e-markets",
			},
		})

		for j := range postsPerUser {
			postID := i*postsPerUser + j + 1

			s.posts = append(s.posts, Post{
				UserID: userID,
				ID:     postID,
				Title:  fmt.Sprintf("post %d by %s", postID, seed.username),
				Body:   fmt.Sprintf("quia et suscipit\nsuscipit recusandae consequuntur expedita et cum %d", postID),
			})
		}
	}

	return s
}

func (s *Store) Users() []User {
	out := make([]User, len(s.users))
	copy(out, s.users)

	return out
}

func (s *Store) User(id int) (User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}

	return User{}, false
}

func (s *Store) Posts() []Post {
	out := make([]Post, len(s.posts))
	copy(out, s.posts)

	return out
}

// PostsByUser returns the posts of a user, empty for an unknown user.
func (s *Store) PostsByUser(userID int) []Post {
	out := []Post{}

	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}

	return out
}

func (s *Store) Post(id int) (Post, bool) {
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}

	return Post{}, false
}
