package handlers

type APIShortenRequest struct {
	URL string `json:"url"` // Оригинальный длинный URL, требующий укорачивания
}

type APIShortenResult struct {
	Result string `json:"result"` // Короткий URL, превращенный из длинного
	Token  string `json:"token"`
}

type indexPage struct {
	Input       string
	ShortURL    string
	Error       string
	ToastMillis int64
}

type redirectPage struct {
	Delay string
	URL   string
}

type notFoundPage struct {
	Token string
}
