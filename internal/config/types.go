package config

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type GRPCConfig struct {
	EnableReflection      bool `mapstructure:"enable_reflection"`
	MaxReceiveMessageSize int  `mapstructure:"max_receive_message_size"`
	MaxSendMessageSize    int  `mapstructure:"max_send_message_size"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type CredentialConfig struct {
	// BcryptCost is the work factor applied to new password credentials.
	BcryptCost int `mapstructure:"bcrypt_cost"`
	// ConstantScan makes password verification compare every stored hash
	// even after a match, so timing no longer correlates with slot position.
	ConstantScan bool `mapstructure:"constant_scan"`
	// TOTPSkew is the number of adjacent time steps accepted around the
	// current one to absorb clock drift.
	TOTPSkew   uint   `mapstructure:"totp_skew"`
	TOTPIssuer string `mapstructure:"totp_issuer"`
}

type AppConfig struct {
	Server      ServerConfig     `mapstructure:"server"`
	GRPC        GRPCConfig       `mapstructure:"grpc"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Credentials CredentialConfig `mapstructure:"credentials"`
}
