package env

// MinioConfig holds the object store connection settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func (c MinioConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

type KafkaConfig struct {
	Broker       string
	CommandTopic string
	EventTopic   string
	GroupID      string
}

func (c KafkaConfig) Enabled() bool { return c.Broker != "" }

// Config is everything the service reads from the environment.
type Config struct {
	HTTPAddr        string
	MapName         string
	DataSource      string
	MapZoom         int
	EnrichAddresses bool
	NominatimURL    string
	SnapshotBucket  string
	DatabaseURL     string
	SQLitePath      string
	Debug           bool
	Minio           MinioConfig
	Kafka           KafkaConfig
}

// Load reads the configuration, applying defaults for unset values.
func Load() Config {
	return Config{
		HTTPAddr:        Get("HTTP_ADDR", ":8080"),
		MapName:         Get("MAP_NAME", "Attendance"),
		DataSource:      Get("DATA_SOURCE", "data.json"),
		MapZoom:         GetInt("MAP_ZOOM", 18),
		EnrichAddresses: GetBool("ENRICH_ADDRESSES", false),
		NominatimURL:    Get("NOMINATIM_URL", ""),
		SnapshotBucket:  Get("SNAPSHOT_BUCKET", ""),
		DatabaseURL:     Get("DATABASE_URL", ""),
		SQLitePath:      Get("SQLITE_PATH", ""),
		Debug:           GetBool("DEBUG", false),
		Minio: MinioConfig{
			Endpoint:  Get("MINIO_ENDPOINT", ""),
			AccessKey: Get("MINIO_ACCESS_KEY", ""),
			SecretKey: Get("MINIO_SECRET_KEY", ""),
			UseSSL:    GetBool("MINIO_USE_SSL", false),
		},
		Kafka: KafkaConfig{
			Broker:       Get("KAFKA_BROKER", ""),
			CommandTopic: Get("KAFKA_COMMAND_TOPIC", "attendance.commands"),
			EventTopic:   Get("KAFKA_EVENT_TOPIC", "attendance.visits"),
			GroupID:      Get("KAFKA_GROUP_ID", "attendance"),
		},
	}
}
