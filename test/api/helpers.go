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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/fatih/color"
)

const (
	// MinPostID and MaxPostID bound the post identifiers the service hands out.
	MinPostID = 1
	MaxPostID = 100
)

var ErrEmptySelection = errors.New("cannot select from an empty list")

//nolint:gochecknoglobals
var (
	labelColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
)

// RandomUser returns a uniformly chosen member of users.
func RandomUser(users []User) (User, error) {
	return randomElement(users)
}

// RandomPost returns a uniformly chosen member of posts.
func RandomPost(posts []Post) (Post, error) {
	return randomElement(posts)
}

func randomElement[T any](items []T) (T, error) {
	var zero T

	if len(items) == 0 {
		return zero, ErrEmptySelection
	}

	//nolint:gosec // selection only, not security sensitive
	return items[rand.IntN(len(items))], nil
}

// ValidatePostID reports whether id is an integer in the range [MinPostID, MaxPostID].
// Floats are accepted when they have no fractional part, as JSON numbers decode
// to float64.
//
//nolint:cyclop
func ValidatePostID(id any) bool {
	switch v := id.(type) {
	case int:
		return inPostRange(int64(v))
	case int8:
		return inPostRange(int64(v))
	case int16:
		return inPostRange(int64(v))
	case int32:
		return inPostRange(int64(v))
	case int64:
		return inPostRange(v)
	case uint:
		return uint64(v) <= MaxPostID && inPostRange(int64(v)) //nolint:gosec
	case uint8:
		return inPostRange(int64(v))
	case uint16:
		return inPostRange(int64(v))
	case uint32:
		return inPostRange(int64(v))
	case uint64:
		return v <= MaxPostID && inPostRange(int64(v)) //nolint:gosec
	case float32:
		return floatInPostRange(float64(v))
	case float64:
		return floatInPostRange(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return false
		}

		return inPostRange(n)
	default:
		return false
	}
}

func inPostRange(n int64) bool {
	return n >= MinPostID && n <= MaxPostID
}

func floatInPostRange(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}

	return f >= MinPostID && f <= MaxPostID
}

// LogSimple prints a single labelled value.
func LogSimple(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s: %v\n", labelColor.Sprint(label), value)
}

// LogJSON prints a label followed by the indented JSON encoding of data.
func LogJSON(w io.Writer, label string, data any) {
	fmt.Fprintf(w, "\n%s:\n", labelColor.Sprint(label))

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%+v\n", data)
		return
	}

	fmt.Fprintln(w, string(out))
}

// LogBanner opens a framed block of output.
func LogBanner(w io.Writer, title string) {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
}

// LogRule closes a framed block of output.
func LogRule(w io.Writer) {
	fmt.Fprint(w, "===================\n\n")
}

// LogSuccess prints a confirmation line.
func LogSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successColor.Sprintf("✓ "+format, args...))
}

// LogWarning prints a warning line.
func LogWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnColor.Sprintf("⚠️  "+format, args...))
}
