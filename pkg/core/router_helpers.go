package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
)

func writeJSON(w http.ResponseWriter, payload any, status int) {
	b, err := codec.JSONStrict.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
