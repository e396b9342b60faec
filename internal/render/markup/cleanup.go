package markup

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// fillerParagraphs are paragraphs Reddit's editor leaves behind on their own.
var fillerParagraphs = map[string]bool{"&#x200b;": true, "-": true, "^": true}

// botSignatures end a body; what follows is boilerplate.
var botSignatures = []string{
	"i am a bot, and this action was performed automatically",
	"^(i am a bot",
}

// dropNoise removes filler paragraphs and cuts the body at a bot signature.
func dropNoise(lines []string) []string {
	var out []string
	for _, para := range paragraphs(lines) {
		key := paragraphKey(strings.Join(para, " "))
		if isBotSignature(key) {
			break
		}
		if key == "" || fillerParagraphs[key] {
			continue
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, para...)
	}
	return out
}

func paragraphs(lines []string) [][]string {
	var out [][]string
	var cur []string
	for _, line := range lines {
		if strings.TrimSpace(ansi.Strip(line)) == "" {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// paragraphKey is the lowercased text of a paragraph without styling or
// the bars and bullets drawn in front of it.
func paragraphKey(s string) string {
	s = strings.TrimLeft(strings.ToLower(ansi.Strip(s)), "▌│•◦▪> ")
	return strings.Join(strings.Fields(s), " ")
}

func isBotSignature(key string) bool {
	for _, sig := range botSignatures {
		if strings.Contains(key, sig) {
			return true
		}
	}
	return false
}
