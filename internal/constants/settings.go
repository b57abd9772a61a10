package constants

const (
	// Settings keys
	SettingDefaultMorning     = "default_morning"
	SettingDefaultNoon        = "default_noon"
	SettingDefaultEvening     = "default_evening"
	SettingDefaultBeforeSleep = "default_before_sleep"

	// Default settings values, offered when a slot is enabled without a time
	DefaultMorningTime     = "08:00"
	DefaultNoonTime        = "12:00"
	DefaultEveningTime     = "18:00"
	DefaultBeforeSleepTime = "21:00"
)
