package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Credentials are sent to POST /sessions. They are never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpInput is the body of POST /users.
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /profile.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionResponse is the success body of POST /sessions.
type SessionResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

// UserProfile is the user as the API describes it. Fields the client does
// not model are kept in Extra so a profile survives a decode/encode round
// trip unchanged. A known field that arrives as null, as "" or with a
// non-string value is kept in Extra under its own key for the same reason.
type UserProfile struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string

	Extra map[string]json.RawMessage
}

// knownFields lists the modelled keys in encoding order.
var knownFields = []string{"id", "name", "email", "avatar_url"}

func (u *UserProfile) field(key string) *string {
	switch key {
	case "id":
		return &u.ID
	case "name":
		return &u.Name
	case "email":
		return &u.Email
	case "avatar_url":
		return &u.AvatarURL
	}
	return nil
}

// MarshalJSON writes the known fields first, followed by the rest of Extra
// in key order. A known field is written from its typed value when that is
// set, otherwise from Extra, otherwise omitted. A profile holding only an
// email encodes as {"email":"..."}.
func (u UserProfile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	write := func(key string, value []byte) error {
		if !json.Valid(value) {
			return fmt.Errorf("user profile: invalid JSON in field %q", key)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	for _, key := range knownFields {
		if v := *u.field(key); v != "" {
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			if err := write(key, encoded); err != nil {
				return nil, err
			}
			continue
		}
		if raw, ok := u.Extra[key]; ok {
			if err := write(key, raw); err != nil {
				return nil, err
			}
		}
	}

	keys := make([]string, 0, len(u.Extra))
	for k := range u.Extra {
		if u.field(k) != nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, u.Extra[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts any JSON object. Known fields holding a non-empty
// string fill the typed fields; everything else goes to Extra verbatim.
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("user profile: %w", err)
	}

	*u = UserProfile{}
	for k, raw := range fields {
		if target := u.field(k); target != nil {
			var v string
			if err := json.Unmarshal(raw, &v); err == nil && v != "" && !isNull(raw) {
				*target = v
				continue
			}
		}
		if u.Extra == nil {
			u.Extra = make(map[string]json.RawMessage)
		}
		u.Extra[k] = raw
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
