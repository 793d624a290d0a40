package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/fredseo/showhub-backend/internal/config"
)

// ErrUpstream wraps a failed third-party API call; handlers surface it as a
// bad gateway with the upstream message embedded.
var ErrUpstream = errors.New("upstream request failed")

// WeatherData is the narrow local shape of an OpenWeather current-conditions
// response.
type WeatherData struct {
	City        string  `json:"city"`
	Temperature int     `json:"temperature"`
	FeelsLike   int     `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
	Clouds      int     `json:"clouds"`
	Units       string  `json:"units"`
}

type ForecastDay struct {
	Date        string  `json:"date"`
	TempMin     int     `json:"temp_min"`
	TempMax     int     `json:"temp_max"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// WeatherClient proxies OpenWeather. API-key auth, no stored tokens.
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewWeatherClient(cfg *config.Config) *WeatherClient {
	return &WeatherClient{
		apiKey:  cfg.OpenWeatherAPIKey,
		baseURL: cfg.OpenWeatherBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type owCurrentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
}

type owForecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

func (w *WeatherClient) CurrentWeather(ctx context.Context, city, units string) (*WeatherData, error) {
	if units == "" {
		units = "metric"
	}

	var data owCurrentResponse
	params := url.Values{"q": {city}, "units": {units}, "appid": {w.apiKey}}
	if err := w.get(ctx, "/weather", params, &data); err != nil {
		return nil, fmt.Errorf("%w: failed to fetch weather for %s: %v", ErrUpstream, city, err)
	}

	desc := ""
	if len(data.Weather) > 0 {
		desc = data.Weather[0].Description
	}

	unitLabel := "°C"
	if units == "imperial" {
		unitLabel = "°F"
	}

	return &WeatherData{
		City:        data.Name,
		Temperature: int(math.Round(data.Main.Temp)),
		FeelsLike:   int(math.Round(data.Main.FeelsLike)),
		Humidity:    data.Main.Humidity,
		Pressure:    data.Main.Pressure,
		Description: desc,
		WindSpeed:   data.Wind.Speed,
		Clouds:      data.Clouds.All,
		Units:       unitLabel,
	}, nil
}

// Forecast returns per-day aggregates for up to `days` days. OpenWeather
// serves 3-hour slices; they are grouped by calendar date.
func (w *WeatherClient) Forecast(ctx context.Context, city string, days int, units string) ([]ForecastDay, error) {
	if units == "" {
		units = "metric"
	}
	if days <= 0 || days > 7 {
		days = 5
	}

	var data owForecastResponse
	params := url.Values{
		"q":     {city},
		"units": {units},
		"appid": {w.apiKey},
		"cnt":   {fmt.Sprint(days * 8)},
	}
	if err := w.get(ctx, "/forecast", params, &data); err != nil {
		return nil, fmt.Errorf("%w: failed to fetch forecast for %s: %v", ErrUpstream, city, err)
	}

	type daily struct {
		temps       []float64
		humiditySum int
		count       int
		description string
		windSpeed   float64
	}

	byDate := make(map[string]*daily)
	var order []string
	for _, item := range data.List {
		date := time.Unix(item.Dt, 0).UTC().Format("2006-01-02")
		d, ok := byDate[date]
		if !ok {
			d = &daily{windSpeed: item.Wind.Speed}
			if len(item.Weather) > 0 {
				d.description = item.Weather[0].Description
			}
			byDate[date] = d
			order = append(order, date)
		}
		d.temps = append(d.temps, item.Main.Temp)
		d.humiditySum += item.Main.Humidity
		d.count++
	}
	sort.Strings(order)

	if len(order) > days {
		order = order[:days]
	}

	forecast := make([]ForecastDay, 0, len(order))
	for _, date := range order {
		d := byDate[date]
		minT, maxT := d.temps[0], d.temps[0]
		for _, t := range d.temps[1:] {
			if t < minT {
				minT = t
			}
			if t > maxT {
				maxT = t
			}
		}
		forecast = append(forecast, ForecastDay{
			Date:        date,
			TempMin:     int(math.Round(minT)),
			TempMax:     int(math.Round(maxT)),
			Description: d.description,
			Humidity:    int(math.Round(float64(d.humiditySum) / float64(d.count))),
			WindSpeed:   d.windSpeed,
		})
	}
	return forecast, nil
}

func (w *WeatherClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
