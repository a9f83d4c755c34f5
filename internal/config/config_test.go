package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsToMongo(t *testing.T) {
	t.Setenv("APP_PORT", "5000")
	t.Setenv("ACCESS_TOKEN_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")

	cfg := Load()
	if cfg.StoreDriver != "mongo" {
		t.Fatalf("expected mongo driver, got %q", cfg.StoreDriver)
	}
	if cfg.MongoURI != "mongodb://localhost:27017" || cfg.MongoDB != "summerCampDB" {
		t.Fatalf("unexpected mongo settings: %q %q", cfg.MongoURI, cfg.MongoDB)
	}
	if cfg.AccessTTLMin != 60 {
		t.Fatalf("expected 60 minute token ttl, got %d", cfg.AccessTTLMin)
	}
	if cfg.LenientRoleLookup {
		t.Fatalf("role lookup must be strict by default")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadComposesAtlasURI(t *testing.T) {
	t.Setenv("APP_PORT", "5000")
	t.Setenv("ACCESS_TOKEN_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")
	t.Setenv("DB_USER", "camp")
	t.Setenv("DB_PASS", "pw")
	t.Setenv("DB_CLUSTER", "cluster0.example.mongodb.net")

	cfg := Load()
	want := "mongodb+srv://camp:pw@cluster0.example.mongodb.net/?retryWrites=true&w=majority"
	if cfg.MongoURI != want {
		t.Fatalf("got %q want %q", cfg.MongoURI, want)
	}
}

func TestLoadMySQLDSN(t *testing.T) {
	t.Setenv("APP_PORT", "5000")
	t.Setenv("ACCESS_TOKEN_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASS", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "camp")

	cfg := Load()
	want := "root@tcp(db:3307)/camp?charset=utf8mb4&parseTime=true&loc=UTC"
	if cfg.MySQLDSN != want {
		t.Fatalf("got %q want %q", cfg.MySQLDSN, want)
	}
}

func TestRateLimitConfigNormalizes(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	cfg := LoadRateLimitConfig()
	if cfg.Enabled {
		t.Fatalf("expected limiter disabled")
	}
	if cfg.Capacity != 1 {
		t.Fatalf("capacity should clamp to 1, got %d", cfg.Capacity)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("ttl should be at least 5 refill intervals, got %s", cfg.TTL)
	}
}

func TestCacheConfigDefaults(t *testing.T) {
	t.Setenv("CACHE_TTL", "-5s")
	cfg := LoadCacheConfig()
	if !cfg.Enabled || cfg.Prefix != "cache" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.TTL != 30*time.Second {
		t.Fatalf("non-positive ttl should fall back to 30s, got %s", cfg.TTL)
	}
}
