package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientPost_SendsJSONWithTokenHeader(t *testing.T) {
	var gotBody map[string]string
	var gotHeader, gotContentType, gotReferer, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-CSRFToken")
		gotContentType = r.Header.Get("Content-Type")
		gotReferer = r.Header.Get("Referer")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Proost!","cost":{"input_tokens":12,"output_tokens":3,"request_cost":0.00001}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), WithReferer("http://example.test/bierguru/"))
	reply, err := c.Post(context.Background(), Request{Endpoint: srv.URL, Token: "tok-1", Message: "Welk bier?"})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "tok-1", gotHeader)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "http://example.test/bierguru/", gotReferer)
	require.Equal(t, map[string]string{"message": "Welk bier?"}, gotBody)

	require.Equal(t, "Proost!", reply.Answer)
	require.Equal(t, http.StatusOK, reply.StatusCode)
	require.NotNil(t, reply.Cost)
	require.Equal(t, 12, reply.Cost.InputTokens)
	require.Equal(t, 3, reply.Cost.OutputTokens)
}

func TestClientPost_CustomTokenHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-XSRF-Token")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), WithTokenHeader("X-XSRF-Token"))
	reply, err := c.Post(context.Background(), Request{Endpoint: srv.URL, Token: "abc", Message: "hoi"})
	require.NoError(t, err)
	require.Equal(t, "abc", got)
	require.Equal(t, "", reply.Answer)
	require.Nil(t, reply.Cost)
}

func TestClientPost_NonSuccessIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`not found`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client()).Post(context.Background(), Request{Endpoint: srv.URL, Message: "x"})
	require.Error(t, err)

	pe, ok := AsProtocolError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, pe.StatusCode)
	require.Equal(t, "not found", pe.Body)
	require.Equal(t, "HTTP 404: not found", pe.Error())
}

func TestClientPost_ErrorBodyIsNotParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Empty message"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client()).Post(context.Background(), Request{Endpoint: srv.URL, Message: "x"})
	pe, ok := AsProtocolError(err)
	require.True(t, ok)
	require.Equal(t, `{"error": "Empty message"}`, pe.Body)
}

func TestClientPost_MalformedBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy login</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client()).Post(context.Background(), Request{Endpoint: srv.URL, Message: "x"})
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.NotEmpty(t, te.Error())
	_, ok := AsProtocolError(err)
	require.False(t, ok)
}

func TestClientPost_ConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	_, err := NewClient(nil).Post(context.Background(), Request{Endpoint: endpoint, Message: "x"})
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.NotEmpty(t, err.Error())
}

func TestClientPost_AnswerShapes(t *testing.T) {
	for _, tc := range []struct {
		name   string
		body   string
		answer string
	}{
		{name: "array", body: `[]`, answer: ""},
		{name: "string", body: `"x"`, answer: ""},
		{name: "null", body: `null`, answer: ""},
		{name: "missing", body: `{}`, answer: ""},
		{name: "number", body: `{"answer": 5}`, answer: "5"},
		{name: "zero", body: `{"answer": 0}`, answer: ""},
		{name: "false", body: `{"answer": false}`, answer: ""},
		{name: "true", body: `{"answer": true}`, answer: "true"},
		{name: "object", body: `{"answer": {"a": 1}}`, answer: `{"a":1}`},
		{name: "bad cost", body: `{"answer": "Proost!", "cost": "gratis"}`, answer: "Proost!"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			reply, err := NewClient(srv.Client()).Post(context.Background(), Request{Endpoint: srv.URL, Message: "x"})
			require.NoError(t, err)
			require.Equal(t, tc.answer, reply.Answer)
			require.Nil(t, reply.Cost)
		})
	}
}
