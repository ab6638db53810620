// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/accounts/internal/platform/apperr"
	"github.com/taibuivan/accounts/internal/platform/validate"
)

/*
TestBuildBatch_SeedsExpected verifies that missing expected fields are seeded and required.
*/
func TestBuildBatch_SeedsExpected(t *testing.T) {
	batch := validate.BuildBatch(
		map[string]any{"nickname": "neo", "extra": 1},
		validate.Expect("email*", "nickname")...,
	)

	email, ok := batch.Field("email")
	require.True(t, ok)
	assert.Nil(t, email.Value())
	assert.Equal(t, []string{"email is required"}, email.Errors())

	nickname, ok := batch.Field("nickname")
	require.True(t, ok)
	assert.True(t, nickname.IsValid())

	_, ok = batch.Field("extra")
	assert.True(t, ok, "unexpected fields are kept")

	validity := batch.Validity()
	assert.False(t, validity.IsValid)
	assert.Equal(t, map[string][]string{"email": {"email is required"}}, validity.ValidationErrors)
}

/*
TestScalars verifies that only lists and objects under expected names are refused.
*/
func TestScalars(t *testing.T) {
	expected := validate.Expect("firstName*", "terms*", "age")

	tests := []struct {
		name   string
		values map[string]any
		want   bool
	}{
		{"scalars", map[string]any{"firstName": "Ada", "terms": true, "age": float64(30)}, true},
		{"absent", map[string]any{}, true},
		{"null", map[string]any{"firstName": nil}, true},
		{"list", map[string]any{"firstName": []any{"x", "y"}}, false},
		{"object", map[string]any{"firstName": map[string]any{"a": "b"}}, false},
		{"unexpected_list_ignored", map[string]any{"tags": []any{"x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.Scalars(tt.values, expected...))
		})
	}
}

/*
TestBatch_ValuesRoundTrip verifies that values come back exactly as submitted.
*/
func TestBatch_ValuesRoundTrip(t *testing.T) {
	values := map[string]any{
		"email":  "  Someone@Example.com ",
		"age":    float64(30),
		"terms":  false,
		"absent": nil,
	}

	batch := validate.BuildBatch(values, validate.Expect("email*", "terms*")...)
	batch.Update("email", validate.FieldValidator.IsEmail)

	assert.Equal(t, values, batch.Values())
}

/*
TestBatch_Update verifies chaining rules through the batch.
*/
func TestBatch_Update(t *testing.T) {
	batch := validate.BuildBatch(map[string]any{"email": "ok@example.com"})
	batch.
		Update("email", validate.FieldValidator.IsEmail).
		Update("ghost", validate.FieldValidator.Required)

	validity := batch.Validity()
	assert.False(t, validity.IsValid)
	assert.NotContains(t, validity.ValidationErrors, "email")
	assert.Equal(t, []string{"ghost is required"}, validity.ValidationErrors["ghost"])
	assert.Equal(t, []string{"email", "ghost"}, batch.Names())
}

/*
TestBatch_Signup runs a full signup form through the engine.
*/
func TestBatch_Signup(t *testing.T) {
	submit := func(values map[string]any) *validate.Batch {
		batch := validate.BuildBatch(values, validate.Expect("email*", "password*", "confirmPassword*", "terms*")...)
		password, _ := batch.Field("password")
		batch.
			Update("email", validate.FieldValidator.IsEmail).
			Update("password", func(f validate.FieldValidator) validate.FieldValidator {
				return f.IsPassword(validate.PasswordOptions{})
			}).
			Update("confirmPassword", func(f validate.FieldValidator) validate.FieldValidator {
				return f.MatchesField(password)
			}).
			Update("terms", validate.FieldValidator.Accepted)
		return batch
	}

	t.Run("valid", func(t *testing.T) {
		batch := submit(map[string]any{
			"email":           "new@example.com",
			"password":        "Abcdef1!",
			"confirmPassword": "Abcdef1!",
			"terms":           true,
		})
		assert.True(t, batch.Validity().IsValid)
		assert.NoError(t, batch.Err())
	})

	t.Run("invalid", func(t *testing.T) {
		batch := submit(map[string]any{
			"email":           "bad",
			"password":        "",
			"confirmPassword": "x",
			"terms":           false,
		})

		validity := batch.Validity()
		assert.False(t, validity.IsValid)
		assert.Equal(t, map[string][]string{
			"email":           {"Invalid email address"},
			"password":        {"password is required"},
			"confirmPassword": {"confirmPassword does not match password"},
			"terms":           {"terms must be accepted"},
		}, validity.ValidationErrors)

		err := batch.Err("password", "confirmPassword")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		assert.Equal(t, validity.ValidationErrors, ae.Fields)
		assert.Equal(t, "bad", ae.PrevValues["email"])
		assert.Equal(t, "", ae.PrevValues["confirmPassword"])
		assert.Equal(t, false, ae.PrevValues["terms"])
	})
}
