package specsuite

import "testing"

func TestLoadDirParsesFixtures(t *testing.T) {
	files, err := LoadDir("testdata")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("want 1 fixture file, got %d", len(files))
	}
	if len(files[0].Tests) == 0 {
		t.Fatal("expected at least one test case")
	}
	for _, c := range files[0].Tests {
		if c.Name == "" || c.Template == "" {
			t.Fatalf("incomplete case: %+v", c)
		}
	}
}
