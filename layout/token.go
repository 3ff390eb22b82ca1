package layout

import "strings"

// Token 表示排版的最小单位：一个不可拆分的词元。
// 折行只会在词元之间发生，超宽词元独占一行而不是被截断。
type Token struct {
	Text  string
	Style *TextStyle // 可选的样式覆盖
	Label string     // 图例标签，空表示无
}

// Tokenize 将纯文本按空白切分为词元序列，连续空白视作单个分隔。
func Tokenize(s string) []Token {
	fields := strings.Fields(s)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, Token{Text: f})
	}
	return tokens
}

// JoinTokens 将词元还原为以单空格分隔的文本。
func JoinTokens(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
