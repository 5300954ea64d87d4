package secrets

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
)

// MnemonicWords is the number of words in a recovery seed phrase.
const MnemonicWords = 12

// wordlist is a fixed 128-word dictionary for recovery phrases. Order
// matters: changing it breaks phrases already handed to users.
var wordlist = []string{
	"abandon", "ability", "absorb", "abstract", "account", "achieve", "acoustic", "acquire",
	"address", "advance", "aerobic", "agent", "alarm", "album", "alcohol", "almost",
	"amateur", "amazing", "anchor", "ancient", "animal", "answer", "antenna", "antique",
	"apology", "approve", "arcade", "arctic", "arena", "armor", "arrange", "artist",
	"aspect", "assault", "asset", "asthma", "athlete", "auction", "august", "autumn",
	"balance", "bamboo", "banner", "bargain", "basket", "battle", "beacon", "benefit",
	"bicycle", "biology", "blanket", "blossom", "border", "bracket", "bridge", "bronze",
	"burden", "cabbage", "cabinet", "cactus", "camera", "canal", "candy", "canvas",
	"capable", "capital", "captain", "carbon", "cargo", "carpet", "castle", "catalog",
	"cattle", "caution", "ceiling", "celery", "cement", "census", "century", "cereal",
	"chamber", "channel", "chapter", "charge", "cherry", "chimney", "chorus", "chronic",
	"cinema", "circle", "citizen", "clarify", "clever", "climate", "clinic", "cluster",
	"coconut", "collect", "column", "combine", "comfort", "comic", "common", "compass",
	"concert", "conduct", "confirm", "congress", "connect", "consider", "control", "convince",
	"copper", "coral", "cotton", "country", "couple", "courage", "cousin", "cradle",
	"crater", "credit", "cricket", "crystal", "culture", "curious", "current", "custom",
}

// NewMnemonic generates a recovery seed phrase of MnemonicWords random
// words drawn from the fixed dictionary.
func NewMnemonic() ([]string, error) {
	words := make([]string, MnemonicWords)
	buf := make([]byte, 2*MnemonicWords)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating mnemonic entropy: %w", err)
	}
	for i := range words {
		n := binary.BigEndian.Uint16(buf[2*i:])
		words[i] = wordlist[int(n)%len(wordlist)]
	}
	return words, nil
}

// JoinMnemonic renders a phrase in its canonical space-separated form.
func JoinMnemonic(words []string) string {
	return strings.Join(words, " ")
}
