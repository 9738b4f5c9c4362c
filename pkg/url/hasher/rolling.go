package hasher

import (
	"strconv"
	"unicode/utf16"
)

const tokenLength = 6
const tokenBase = 36

// RollingHasher реализует классический 32-битный полиномиальный хэш (hash*31 + c)
// над UTF-16 кодами символов строки. Результат отображается в base36 и обрезается до 6 символов.
// Коллизии ожидаемы и никак не разрешаются
type RollingHasher struct{}

func NewRollingHasher() *RollingHasher {
	return &RollingHasher{}
}

func (h RollingHasher) Hash(s string) string {
	var hash int32
	for _, c := range utf16.Encode([]rune(s)) {
		// int32 в go переполняется по модулю 2^32, что и требуется
		hash = (hash << 5) - hash + int32(c)
	}
	return render(hash)
}

func render(hash int32) string {
	// модуль берем в 64 битах, иначе MinInt32 останется отрицательным
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	token := strconv.FormatInt(abs, tokenBase)
	if len(token) > tokenLength {
		token = token[:tokenLength]
	}
	return token
}
