package hasher

// Hasher получает короткий токен из произвольной строки
type Hasher interface {
	Hash(string) string
}
