package main

import (
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"

	"doodle/scene"
)

// copyToClipboard serializes the selection payload to the system
// clipboard as JSON, so entities can move between running instances.
func copyToClipboard(s *scene.Scene) error {
	p := s.CopySelection()
	if p == nil {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return clipboard.WriteAll(string(data))
}

// pasteFromClipboard reads a payload back from the system clipboard
// and pastes it, returning the new top-level ids.
func pasteFromClipboard(s *scene.Scene) ([]int, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, err
	}
	var p scene.Payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("clipboard does not hold diagram entities")
	}
	roots := s.Paste(&p)
	if len(roots) == 0 {
		return nil, fmt.Errorf("clipboard does not hold a usable diagram payload")
	}
	return roots, nil
}
