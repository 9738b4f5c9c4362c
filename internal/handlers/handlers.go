package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ppinng/url-shotener/internal/app"
	"github.com/ppinng/url-shotener/internal/redirect"
	"github.com/ppinng/url-shotener/pkg/url/validator"
)

const invalidInputMessage = "Please enter a valid URL"

type Handler struct {
	App *app.App
}

func isInvalidInput(err error) bool {
	return errors.Is(err, validator.ErrInvalidURL) || errors.Is(err, validator.ErrEmptyURL)
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// navigationTarget отбрасывает пробелы по краям сохраненного URL,
// как это делает браузер при переходе; иначе Location будет разобран как относительный путь
func navigationTarget(longURL string) string {
	return strings.TrimSpace(longURL)
}

// Index отдает страницу с формой для сокращения ссылки
func (handler Handler) Index(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "index.html", indexPage{})
}

// ShortenURL принимает на вход произвольный URL и создает для него "короткую" версию,
// при переходе по которой пользователь попадет на оригинальный "длинный" URL.
// Отправка формы со страницы возвращает ту же страницу с готовой ссылкой,
// любое другое тело запроса считается самим URL: в случае успеха возвращается код 201
// и короткая ссылка в теле ответа, при отсутствии валидного URL - ошибка 400
func (handler Handler) ShortenURL(w http.ResponseWriter, r *http.Request) {
	if isForm(r) {
		handler.shortenForm(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	mapping, err := handler.App.Shorten(r.Context(), string(body))
	if err != nil {
		handler.shortenFailed(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(handler.App.ShortURL(mapping.Token, r))) // nolint: errcheck
}

func (handler Handler) shortenForm(w http.ResponseWriter, r *http.Request) {
	input := r.PostFormValue("url")
	page := indexPage{
		Input:       input,
		ToastMillis: handler.App.Config.ToastDuration.Milliseconds(),
	}
	mapping, err := handler.App.Shorten(r.Context(), input)
	switch {
	case isInvalidInput(err):
		page.Error = invalidInputMessage
		render(w, http.StatusBadRequest, "index.html", page)
		return
	case err != nil:
		log.Errorf("unable to shorten %q due to %v", input, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	page.ShortURL = handler.App.ShortURL(mapping.Token, r)
	render(w, http.StatusOK, "index.html", page)
}

func (handler Handler) shortenFailed(w http.ResponseWriter, err error) {
	if isInvalidInput(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Errorf("unable to shorten url due to %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// APIShortenURL по аналогии с ShortenURL принимает на вход произвольный URL и создает для него короткую ссылку.
// Эндпоинт принимает ссылку в виде json, URL в котором указывается ключем "url"
// В случае успеха возвращает код 201 и готовую короткую ссылку в теле ответа, так же в виде json.
// В случае отстуствия валидного URL в теле запроса вернет ошибку 400
func (handler Handler) APIShortenURL(w http.ResponseWriter, r *http.Request) {
	var shortenReq APIShortenRequest
	// Получили невалидный json
	if err := json.NewDecoder(r.Body).Decode(&shortenReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mapping, err := handler.App.Shorten(r.Context(), shortenReq.URL)
	if err != nil {
		handler.shortenFailed(w, err)
		return
	}
	respBody, err := json.Marshal(&APIShortenResult{
		Result: handler.App.ShortURL(mapping.Token, r),
		Token:  mapping.Token,
	})
	// Не удалось серилизовать json по некой очень редкой проблеме
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(respBody) // nolint: errcheck
}

// ExpandURL перенаправляет пользователя, перешедшего по короткой ссылке, на оригинальный "длинный" URL
// после небольшой задержки.
// Браузеру отдается страница "Redirecting you..." с заголовком Refresh, отсчет задержки ведет сам браузер.
// Остальным клиентам сервер отвечает 307 по истечении задержки.
// В случае неизвестной сервису короткой ссылки возвращает ошибку 404
func (handler Handler) ExpandURL(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.Error(w, "Invalid short url", http.StatusBadRequest)
		return
	}
	if wantsHTML(r) {
		handler.expandPage(w, r, token)
		return
	}

	state, err := redirect.Wait(r.Context(), token, handler.App.Config.RedirectDelay, handler.App.Shortener)
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// клиент ушел раньше, чем истекла задержка; автомат уже разобран
		log.WithField("token", token).Debug("client went away before redirect")
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	switch s := state.(type) {
	case redirect.Redirecting:
		http.Redirect(w, r, navigationTarget(s.URL), http.StatusTemporaryRedirect)
	case redirect.NotFound:
		http.Error(w, "short url not found", http.StatusNotFound)
	}
}

func (handler Handler) expandPage(w http.ResponseWriter, r *http.Request, token string) {
	rd := redirect.New(token, handler.App.Config.RedirectDelay, nil)
	state, err := rd.Enter(r.Context(), handler.App.Shortener)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	switch s := state.(type) {
	case redirect.Redirecting:
		delay := handler.App.RefreshSeconds()
		target := navigationTarget(s.URL)
		w.Header().Set("Refresh", delay+"; url="+target)
		render(w, http.StatusOK, "redirect.html", redirectPage{Delay: delay, URL: target})
	case redirect.NotFound:
		render(w, http.StatusNotFound, "notfound.html", notFoundPage{Token: s.Token})
	}
}

// Ping проверяет доступность хранилища
func (handler Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := handler.App.Storage.Ping(r.Context()); err != nil {
		log.Errorf("storage ping failed due to %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
