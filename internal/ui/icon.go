package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// iconBytes is the tray icon, a 16x16 checkerboard in the accent color.
// Generated at startup so no asset file needs to ship with the binary.
var iconBytes = makeIcon()

func makeIcon() []byte {
	const size = 16
	accent := color.RGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff}
	dark := color.RGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetRGBA(x, y, accent)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
