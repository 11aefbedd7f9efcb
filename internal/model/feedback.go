package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeedbackResponse is the envelope returned by the AI feedback service. A
// JSON null body decodes to a response with no message.
type FeedbackResponse struct {
	Message *FeedbackMessage `json:"message"`
}

// FeedbackMessage is the assistant turn carrying the feedback content.
type FeedbackMessage struct {
	Role    string         `json:"role,omitempty"`
	Content MessageContent `json:"content"`
}

// ContentBlock is one element of block-style message content. Text is a
// pointer because an absent field and a present-but-empty string mean
// different things to FeedbackText.
type ContentBlock struct {
	Type string  `json:"type,omitempty"`
	Text *string `json:"text,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: &text}
}

type contentKind int

const (
	contentString contentKind = iota
	contentBlocks
)

// MessageContent is the two-shape content of an assistant message: either a
// plain string or a sequence of content blocks. The shape that was received
// is kept so selection can match on it explicitly.
type MessageContent struct {
	kind   contentKind
	text   string
	blocks []ContentBlock
}

// StringContent builds the plain-string shape.
func StringContent(text string) MessageContent {
	return MessageContent{kind: contentString, text: text}
}

// BlockContent builds the block-sequence shape.
func BlockContent(blocks ...ContentBlock) MessageContent {
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	return MessageContent{kind: contentBlocks, blocks: blocks}
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty message content")
	}

	switch trimmed[0] {
	case '"':
		c.kind = contentString
		return json.Unmarshal(trimmed, &c.text)
	case '[':
		c.kind = contentBlocks
		return json.Unmarshal(trimmed, &c.blocks)
	default:
		return fmt.Errorf("unexpected message content shape: %s", snippet(trimmed))
	}
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case contentBlocks:
		return json.Marshal(c.blocks)
	default:
		return json.Marshal(c.text)
	}
}

// FeedbackText selects the text to decode as feedback: string content is
// used directly; block content contributes its first block's text, with
// "{}" standing in when the sequence is empty or the first block carries no
// text field at all. A present-but-empty text is returned as-is and fails
// decoding downstream.
func (c MessageContent) FeedbackText() string {
	switch c.kind {
	case contentBlocks:
		if len(c.blocks) == 0 || c.blocks[0].Text == nil {
			return "{}"
		}
		return *c.blocks[0].Text
	default:
		return c.text
	}
}

func snippet(data []byte) string {
	if len(data) > 24 {
		return string(data[:24]) + "..."
	}
	return string(data)
}
