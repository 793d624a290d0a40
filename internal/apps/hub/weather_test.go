package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentWeatherReshapesUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Lyon", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Lyon",
			"main": {"temp": 21.6, "feels_like": 20.4, "humidity": 40, "pressure": 1013},
			"weather": [{"description": "clear sky"}],
			"wind": {"speed": 3.5},
			"clouds": {"all": 10}
		}`))
	}))
	defer upstream.Close()

	client := NewWeatherClient(&config.Config{
		OpenWeatherAPIKey:  "test-key",
		OpenWeatherBaseURL: upstream.URL,
	})

	data, err := client.CurrentWeather(context.Background(), "Lyon", "")
	require.NoError(t, err)

	assert.Equal(t, "Lyon", data.City)
	assert.Equal(t, 22, data.Temperature)
	assert.Equal(t, 20, data.FeelsLike)
	assert.Equal(t, 40, data.Humidity)
	assert.Equal(t, "clear sky", data.Description)
	assert.Equal(t, "°C", data.Units)
}

func TestCurrentWeatherUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	client := NewWeatherClient(&config.Config{
		OpenWeatherAPIKey:  "test-key",
		OpenWeatherBaseURL: upstream.URL,
	})

	_, err := client.CurrentWeather(context.Background(), "Nowhere", "")
	require.ErrorIs(t, err, ErrUpstream)
}

func TestForecastGroupsSlicesByDay(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)

		// Two 3-hour slices on one day, one on the next (UTC timestamps).
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"list": [
			{"dt": 1767182400, "main": {"temp": 5.2, "humidity": 60}, "weather": [{"description": "light rain"}], "wind": {"speed": 4.1}},
			{"dt": 1767193200, "main": {"temp": 9.8, "humidity": 50}, "weather": [{"description": "cloudy"}], "wind": {"speed": 5.0}},
			{"dt": 1767268800, "main": {"temp": 7.0, "humidity": 70}, "weather": [{"description": "snow"}], "wind": {"speed": 2.2}}
		]}`))
	}))
	defer upstream.Close()

	client := NewWeatherClient(&config.Config{
		OpenWeatherAPIKey:  "test-key",
		OpenWeatherBaseURL: upstream.URL,
	})

	forecast, err := client.Forecast(context.Background(), "Lyon", 5, "")
	require.NoError(t, err)
	require.Len(t, forecast, 2)

	first := forecast[0]
	assert.Equal(t, 5, first.TempMin)
	assert.Equal(t, 10, first.TempMax)
	assert.Equal(t, "light rain", first.Description)
	assert.Equal(t, 55, first.Humidity)

	assert.True(t, forecast[0].Date < forecast[1].Date)
}
