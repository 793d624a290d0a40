package hub

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type widgetSeed struct {
	Name        string
	DisplayName string
	Description string
	ParamSchema string
	RefreshRate int
}

type serviceSeed struct {
	Name         string
	DisplayName  string
	Description  string
	Type         string
	RequiresAuth bool
	Widgets      []widgetSeed
}

var builtinServices = []serviceSeed{
	{
		Name:        ServiceWeather,
		DisplayName: "Weather",
		Description: "Current conditions and forecasts from OpenWeather",
		Type:        ServiceTypePublic,
		Widgets: []widgetSeed{
			{
				Name:        "weather_today",
				DisplayName: "Today's Weather",
				Description: "Current conditions for a city",
				ParamSchema: `{"city":{"type":"string","required":true},"units":{"type":"string","enum":["metric","imperial"],"default":"metric"}}`,
				RefreshRate: 600,
			},
			{
				Name:        "weather_forecast",
				DisplayName: "Weather Forecast",
				Description: "Daily forecast for the coming days",
				ParamSchema: `{"city":{"type":"string","required":true},"days":{"type":"number","default":5},"units":{"type":"string","enum":["metric","imperial"],"default":"metric"}}`,
				RefreshRate: 3600,
			},
		},
	},
	{
		Name:         ServiceCalendar,
		DisplayName:  "Google Calendar",
		Description:  "Events from your primary Google calendar",
		Type:         ServiceTypePersonal,
		RequiresAuth: true,
		Widgets: []widgetSeed{
			{
				Name:        "upcoming_events",
				DisplayName: "Upcoming Events",
				Description: "Next events on your calendar",
				ParamSchema: `{"max_results":{"type":"number","default":10}}`,
				RefreshRate: 300,
			},
			{
				Name:        "today_events",
				DisplayName: "Today's Events",
				Description: "Everything scheduled for today",
				ParamSchema: `{}`,
				RefreshRate: 300,
			},
			{
				Name:        "birthdays",
				DisplayName: "Birthdays",
				Description: "Birthday events in the coming week",
				ParamSchema: `{"days":{"type":"number","default":7}}`,
				RefreshRate: 3600,
			},
		},
	},
	{
		Name:         ServiceEmail,
		DisplayName:  "Gmail",
		Description:  "Messages from your Gmail inbox",
		Type:         ServiceTypePersonal,
		RequiresAuth: true,
		Widgets: []widgetSeed{
			{
				Name:        "unread_emails",
				DisplayName: "Unread Emails",
				Description: "Your most recent unread messages",
				ParamSchema: `{"max_results":{"type":"number","default":10}}`,
				RefreshRate: 120,
			},
			{
				Name:        "important_emails",
				DisplayName: "Important Emails",
				Description: "Messages Gmail flagged as important",
				ParamSchema: `{"max_results":{"type":"number","default":10}}`,
				RefreshRate: 300,
			},
			{
				Name:        "recent_emails",
				DisplayName: "Recent Emails",
				Description: "The latest messages in your inbox",
				ParamSchema: `{"max_results":{"type":"number","default":10}}`,
				RefreshRate: 300,
			},
		},
	},
	{
		Name:         ServiceDrive,
		DisplayName:  "Google Drive",
		Description:  "Files from your Google Drive",
		Type:         ServiceTypePersonal,
		RequiresAuth: true,
		Widgets: []widgetSeed{
			{
				Name:        "recent_files",
				DisplayName: "Recent Files",
				Description: "Your most recently modified files",
				ParamSchema: `{"page_size":{"type":"number","default":10}}`,
				RefreshRate: 600,
			},
		},
	},
}

// Seed inserts the built-in service directory. Safe to run on every startup:
// existing services and widgets are matched by name and left alone.
func (a *App) Seed(db *gorm.DB) error {
	for _, ss := range builtinServices {
		var service Service
		err := db.Where("name = ?", ss.Name).First(&service).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			service = Service{
				Name:         ss.Name,
				DisplayName:  ss.DisplayName,
				Description:  ss.Description,
				Type:         ss.Type,
				RequiresAuth: ss.RequiresAuth,
			}
			if err := db.Create(&service).Error; err != nil {
				return fmt.Errorf("failed to seed service %s: %w", ss.Name, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up service %s: %w", ss.Name, err)
		}

		for _, ws := range ss.Widgets {
			var count int64
			err := db.Model(&Widget{}).
				Where("service_id = ? AND name = ?", service.ID, ws.Name).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("failed to look up widget %s: %w", ws.Name, err)
			}
			if count > 0 {
				continue
			}

			widget := Widget{
				ServiceID:   service.ID,
				Name:        ws.Name,
				DisplayName: ws.DisplayName,
				Description: ws.Description,
				ParamSchema: datatypes.JSON(ws.ParamSchema),
				RefreshRate: ws.RefreshRate,
			}
			if err := db.Create(&widget).Error; err != nil {
				return fmt.Errorf("failed to seed widget %s: %w", ws.Name, err)
			}
		}
	}
	return nil
}
