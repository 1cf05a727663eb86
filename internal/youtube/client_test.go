package youtube

import "testing"

func TestNormalizeChannelRef(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		wantID     string
		wantHandle string
	}{
		{"empty", "", "", ""},
		{"whitespace only", "   ", "", ""},
		{"canonical id", "UCBR8-60-B28hp2BmDPdntcQ", "UCBR8-60-B28hp2BmDPdntcQ", ""},
		{"short UC prefix is a handle", "UCx", "", "@UCx"},
		{"at handle", "@veritasium", "", "@veritasium"},
		{"bare handle", "veritasium", "", "@veritasium"},
		{"channel url", "https://www.youtube.com/channel/UCBR8-60-B28hp2BmDPdntcQ", "UCBR8-60-B28hp2BmDPdntcQ", ""},
		{"channel url with trailing path", "https://www.youtube.com/channel/UCBR8-60-B28hp2BmDPdntcQ/videos", "UCBR8-60-B28hp2BmDPdntcQ", ""},
		{"channel url with non-canonical segment", "https://www.youtube.com/channel/veritasium", "", "@veritasium"},
		{"handle url", "https://www.youtube.com/@veritasium", "", "@veritasium"},
		{"handle url with tab", "https://www.youtube.com/@veritasium/videos", "", "@veritasium"},
		{"legacy custom url", "https://www.youtube.com/c/veritasium", "", "@veritasium"},
		{"bare host url", "https://www.youtube.com/", "", ""},
		{"http scheme", "http://youtube.com/@mkbhd", "", "@mkbhd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, handle := normalizeChannelRef(tt.reference)
			if id != tt.wantID || handle != tt.wantHandle {
				t.Errorf("normalizeChannelRef(%q) = (%q, %q), want (%q, %q)",
					tt.reference, id, handle, tt.wantID, tt.wantHandle)
			}
		})
	}
}

func TestNewClient_MissingKey(t *testing.T) {
	if _, err := NewClient(""); err != ErrMissingAPIKey {
		t.Errorf("NewClient(\"\") error = %v, want ErrMissingAPIKey", err)
	}
}
