package transport

import "testing"

func TestParseDSNPlainTCP(t *testing.T) {
	dsn, err := ParseDSN("192.168.1.10:6000")
	if err != nil {
		t.Fatalf("ParseDSN() error = %v", err)
	}
	if dsn.Kind != KindTCP || dsn.Host != "192.168.1.10" || dsn.Port != 6000 {
		t.Errorf("got %+v", dsn)
	}
}

func TestParseDSNDefaultPort(t *testing.T) {
	dsn, err := ParseDSN("myhost")
	if err != nil {
		t.Fatalf("ParseDSN() error = %v", err)
	}
	if dsn.Port != 6000 {
		t.Errorf("Port = %d, want default 6000", dsn.Port)
	}
}

func TestParseDSNTLSScheme(t *testing.T) {
	dsn, err := ParseDSN("tls://myhost:6001")
	if err != nil {
		t.Fatalf("ParseDSN() error = %v", err)
	}
	if dsn.Kind != KindTLS || dsn.Port != 6001 {
		t.Errorf("got %+v", dsn)
	}
}

func TestParseDSNPassword(t *testing.T) {
	dsn, err := ParseDSN("secret@myhost:6000")
	if err != nil {
		t.Fatalf("ParseDSN() error = %v", err)
	}
	if dsn.Password != "secret" {
		t.Errorf("Password = %q, want %q", dsn.Password, "secret")
	}
}

func TestParseDSNSerialPath(t *testing.T) {
	dsn, err := ParseDSN("/dev/ttyUSB0")
	if err != nil {
		t.Fatalf("ParseDSN() error = %v", err)
	}
	if dsn.Kind != KindSerial || dsn.Path != "/dev/ttyUSB0" {
		t.Errorf("got %+v", dsn)
	}
}

func TestParseDSNUnknownScheme(t *testing.T) {
	if _, err := ParseDSN("ftp://myhost:21"); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}

func TestParseDSNEmpty(t *testing.T) {
	if _, err := ParseDSN(""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestDSNAddress(t *testing.T) {
	dsn := DSN{Host: "myhost", Port: 6000}
	if got := dsn.Address(); got != "myhost:6000" {
		t.Errorf("Address() = %q, want %q", got, "myhost:6000")
	}
}
