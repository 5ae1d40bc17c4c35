package classify

import (
	"bytes"
	"testing"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		truncated bool
		wantOK    bool
		wantDelim byte
		wantCols  int
		wantScore int
		wantLines int
	}{
		{
			name:      "comma separated",
			data:      "id,name,amount\n1,widget,10\n2,gadget,14\n",
			wantOK:    true,
			wantDelim: ',',
			wantCols:  3,
			wantScore: 3,
			wantLines: 3,
		},
		{
			name:      "semicolon separated",
			data:      "id;name\n1;widget\n",
			wantOK:    true,
			wantDelim: ';',
			wantCols:  2,
			wantScore: 2,
			wantLines: 2,
		},
		{
			name:      "tab separated",
			data:      "id\tname\tamount\n1\twidget\t10\n",
			wantOK:    true,
			wantDelim: '\t',
			wantCols:  3,
			wantScore: 2,
			wantLines: 2,
		},
		{
			name:      "pipe separated",
			data:      "id|name\n1|widget\n2|gadget\n",
			wantOK:    true,
			wantDelim: '|',
			wantCols:  2,
			wantScore: 3,
			wantLines: 3,
		},
		{
			name:      "score tie goes to earlier candidate",
			data:      "a,b;c\nd,e;f\n",
			wantOK:    true,
			wantDelim: ',',
			wantCols:  2,
			wantScore: 2,
			wantLines: 2,
		},
		{
			name:      "single column disqualifies",
			data:      "hello\nworld\n",
			wantOK:    false,
			wantLines: 2,
		},
		{
			name:      "empty input",
			data:      "",
			wantOK:    false,
			wantLines: 0,
		},
		{
			name:      "blank lines are not sampled",
			data:      "a,b\n\n\nc,d\n",
			wantOK:    true,
			wantDelim: ',',
			wantCols:  2,
			wantScore: 2,
			wantLines: 2,
		},
		{
			name:      "truncated tail fragment is dropped",
			data:      "a,b\nc,d\nxx",
			truncated: true,
			wantOK:    true,
			wantDelim: ',',
			wantCols:  2,
			wantScore: 2,
			wantLines: 2,
		},
		{
			name:      "complete tail line is scored",
			data:      "a,b\nc,d\nxx",
			wantOK:    true,
			wantDelim: ',',
			wantCols:  2,
			wantScore: 2,
			wantLines: 3,
		},
		{
			name:      "mostly consistent rows win despite outlier",
			data:      "a,b,c\nd,e,f\ng,h\ni,j,k\n",
			wantOK:    true,
			wantDelim: ',',
			wantCols:  3,
			wantScore: 3,
			wantLines: 4,
		},
		{
			name:      "crlf line endings",
			data:      "a,b\r\nc,d\r\n",
			wantOK:    true,
			wantDelim: ',',
			wantCols:  2,
			wantScore: 2,
			wantLines: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SniffDelimiter([]byte(tt.data), tt.truncated)
			if got.OK != tt.wantOK {
				t.Fatalf("OK = %v, want %v (result %+v)", got.OK, tt.wantOK, got)
			}
			if got.Lines != tt.wantLines {
				t.Errorf("Lines = %d, want %d", got.Lines, tt.wantLines)
			}
			if !tt.wantOK {
				return
			}
			if got.Delimiter != tt.wantDelim {
				t.Errorf("Delimiter = %q, want %q", got.Delimiter, tt.wantDelim)
			}
			if got.Columns != tt.wantCols {
				t.Errorf("Columns = %d, want %d", got.Columns, tt.wantCols)
			}
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
		})
	}
}

func TestSniffDelimiterLineCap(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 30; i++ {
		buf.WriteString("a,b,c\n")
	}

	got := SniffDelimiter(buf.Bytes(), false)
	if got.Lines != 20 {
		t.Errorf("Lines = %d, want the 20-line cap", got.Lines)
	}
	if !got.OK || got.Delimiter != ',' || got.Score != 20 {
		t.Errorf("unexpected result %+v", got)
	}
}
