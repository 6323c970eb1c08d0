package analyzer

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mi-examples/cs-helper/internal/tsparse"
)

// Documentation tags recognized in JSDoc blocks.
const (
	tagExample = "@example"
	tagDefault = "@default"
	tagSecret  = "@secret"
)

// ExtractCommentInfo recovers the documentation comment attached to a
// declaration node and parses it. Any failure yields the all-empty result
// rather than propagating.
func ExtractCommentInfo(unit *tsparse.SourceUnit, node *sitter.Node) (info CommentInfo) {
	defer func() {
		if r := recover(); r != nil {
			info = CommentInfo{}
		}
	}()

	raw, ok := attachedDocComment(unit, node)
	if !ok {
		return CommentInfo{}
	}
	return parseDocComment(raw)
}

// attachedDocComment locates the JSDoc block for a declaration using two
// ordered strategies: the syntax tree's comment nodes first, then a manual
// text scan over the leading trivia.
func attachedDocComment(unit *tsparse.SourceUnit, node *sitter.Node) (string, bool) {
	if unit == nil || node == nil {
		return "", false
	}

	if raw, ok := docCommentFromTree(unit, node); ok {
		return raw, true
	}
	return docCommentFromScan(unit, node)
}

// docCommentFromTree takes the last comment node ending immediately before
// the declaration, separated by whitespace only, and requires the
// block-documentation marker.
func docCommentFromTree(unit *tsparse.SourceUnit, node *sitter.Node) (string, bool) {
	var last *sitter.Node
	start := node.StartByte()

	tsparse.WalkTree(unit.Root(), func(n *sitter.Node) bool {
		if n.StartByte() >= start {
			return false
		}
		if n.Kind() == "comment" && n.EndByte() <= start {
			if last == nil || n.EndByte() > last.EndByte() {
				last = n
			}
		}
		return true
	})

	if last == nil {
		return "", false
	}
	between := string(unit.Source[last.EndByte():start])
	if strings.TrimSpace(between) != "" {
		return "", false
	}

	text := unit.Text(last)
	if !strings.HasPrefix(text, "/**") {
		return "", false
	}
	return text, true
}

// docCommentFromScan finds the last block-open marker before the
// declaration and the first block-close marker after it. The block only
// attaches when nothing but whitespace separates it from the declaration;
// a block further up the file belongs to some other node.
func docCommentFromScan(unit *tsparse.SourceUnit, node *sitter.Node) (string, bool) {
	leading := string(unit.Source[:node.StartByte()])

	open := strings.LastIndex(leading, "/**")
	if open < 0 {
		return "", false
	}
	closing := strings.Index(leading[open:], "*/")
	if closing < 0 {
		return "", false
	}
	end := open + closing + 2
	if strings.TrimSpace(leading[end:]) != "" {
		return "", false
	}
	return leading[open:end], true
}

// parseDocComment strips comment decoration and splits the block into
// description, example, and sensitivity flag.
func parseDocComment(raw string) CommentInfo {
	lines := stripCommentDecoration(raw)

	var desc []string
	var example, defaultText []string
	capture := (*[]string)(nil)
	descDone := false

	for _, line := range lines {
		tag := leadingTag(line)
		switch {
		case tag == tagExample:
			capture = &example
			descDone = true
			if rest := strings.TrimSpace(line[len(tagExample):]); rest != "" {
				example = append(example, rest)
			}
		case tag == tagDefault:
			capture = &defaultText
			descDone = true
			if rest := strings.TrimSpace(line[len(tagDefault):]); rest != "" {
				defaultText = append(defaultText, rest)
			}
		case tag != "":
			// Any other tag ends the current capture and the description.
			capture = nil
			descDone = true
		case capture != nil:
			*capture = append(*capture, line)
		case descDone:
		case len(desc) > 0 && strings.TrimSpace(line) == "":
			// Blank line ends the description paragraph.
			descDone = true
		default:
			// A tag mid-line still ends the description.
			if idx := inlineTagIndex(line); idx >= 0 {
				if frag := strings.TrimSpace(line[:idx]); frag != "" {
					desc = append(desc, frag)
				}
				descDone = true
				break
			}
			desc = append(desc, line)
		}
	}

	info := CommentInfo{
		Description: strings.TrimSpace(strings.Join(desc, "\n")),
		Sensitive:   containsTag(lines, tagSecret),
	}

	if len(example) > 0 {
		info.Example = strings.TrimSpace(strings.Join(example, "\n"))
	} else if len(defaultText) > 0 {
		info.Example = strings.TrimSpace(strings.Join(defaultText, "\n"))
	}
	return info
}

// stripCommentDecoration removes the block markers and per-line leading
// asterisk decoration.
func stripCommentDecoration(raw string) []string {
	inner := strings.TrimPrefix(raw, "/**")
	inner = strings.TrimSuffix(inner, "*/")

	lines := strings.Split(inner, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		if strings.HasPrefix(line, " ") {
			line = line[1:]
		}
		lines[i] = line
	}
	return lines
}

// leadingTag returns the JSDoc tag a line starts with, or "".
func leadingTag(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "@") {
		return ""
	}
	end := len(trimmed)
	for i, r := range trimmed {
		if i > 0 && (r == ' ' || r == '\t') {
			end = i
			break
		}
	}
	return trimmed[:end]
}

// inlineTagIndex returns the position of the first tag marker inside a
// line, or -1. A marker is an "@" at the line start or after whitespace,
// followed by a letter; infix at-signs (emails, handles) do not count.
func inlineTagIndex(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != '@' {
			continue
		}
		if i > 0 && line[i-1] != ' ' && line[i-1] != '\t' {
			continue
		}
		if i+1 < len(line) && isTagLetter(line[i+1]) {
			return i
		}
	}
	return -1
}

func isTagLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func containsTag(lines []string, tag string) bool {
	for _, line := range lines {
		for rest := line; ; {
			idx := strings.Index(rest, tag)
			if idx < 0 {
				break
			}
			after := rest[idx+len(tag):]
			if after == "" || after[0] == ' ' || after[0] == '\t' || after[0] == '\r' {
				return true
			}
			rest = after
		}
	}
	return false
}

// nearestShapeComment finds the closest comment that declares an inline
// {...} type shape, scanning backward from the call's line. A match must
// appear strictly before the call and no more than window lines above it.
// The shape is reformatted one field entry per semicolon-delimited member.
func nearestShapeComment(unit *tsparse.SourceUnit, callLine, window int) (string, bool) {
	var best *sitter.Node
	bestLine := -1

	tsparse.WalkTree(unit.Root(), func(n *sitter.Node) bool {
		if n.Kind() != "comment" {
			return true
		}
		line := unit.Line(n)
		if line >= callLine || line < callLine-window {
			return true
		}
		text := unit.Text(n)
		if !strings.Contains(text, "{") || !strings.Contains(text, "}") {
			return true
		}
		if line > bestLine {
			best, bestLine = n, line
		}
		return true
	})

	if best == nil {
		return "", false
	}
	return reformatShape(unit.Text(best)), true
}

func reformatShape(comment string) string {
	open := strings.Index(comment, "{")
	closing := strings.LastIndex(comment, "}")
	if open < 0 || closing <= open {
		return ""
	}

	inner := comment[open+1 : closing]
	var members []string
	for _, member := range strings.Split(inner, ";") {
		member = strings.TrimSpace(strings.Trim(member, "*/ \t\r\n"))
		if member != "" {
			members = append(members, member)
		}
	}
	return strings.Join(members, "\n")
}
