package mcpserver

// NoteFormatURI is the resource address of the note format description.
const NoteFormatURI = "jotter://note-format"

// NoteFormat describes how Jotter notes look, both in tool results and in
// Markdown exports.
const NoteFormat = `# Jotter Note Format

A note has a title, a body, an owner and a visibility flag. Notes are
private unless published.

## Fields

| Field         | Notes                                                   |
|---------------|---------------------------------------------------------|
| id            | Assigned on creation. Never changes.                    |
| title         | REQUIRED. Must not be blank once surrounding spaces are removed. |
| content       | Free text, usually Markdown. May be empty.              |
| is_public     | false = only the owner sees it; true = everyone does.   |
| user_id       | The owner. Set on creation, never changes.              |
| modified_at   | Rewritten on every create and update.                   |

## Markdown form

` + "```" + `markdown
---
id: 0b6f1c2e-0000-0000-0000-000000000000
title: Weekly plan
public: false
modified_at: 2025-01-20T09:30:00Z
---
Body text in standard Markdown.
` + "```" + `

Rules:

1. The ` + "`---`" + ` fences must be the first thing in the file.
2. When ` + "`title`" + ` is missing the first ` + "`# heading`" + ` of the body is used, then
   the file name.
3. On import ` + "`id`" + ` and ` + "`modified_at`" + ` are ignored: every file becomes a new
   note owned by the importing user.
4. Export file names are the title slug followed by the first eight
   characters of the id, e.g. ` + "`weekly-plan-0b6f1c2e.md`" + `.

## Tools

- ` + "`list_notes`" + ` searches every field of every visible note; ` + "`tab`" + ` narrows to
  ` + "`public`" + ` or ` + "`private`" + ` notes.
- ` + "`create_note`" + ` and ` + "`update_note`" + ` take an explicit ` + "`public`" + ` flag: saving always
  decides visibility.
- ` + "`delete_note`" + ` is permanent.
`
