package ebitendevice

// depthShaderText writes the depth carried in the vertex color's red channel wherever it's nearer than what's already
// in the depth image (Images[0]). Depth is packed into RGB so it keeps more than 8 bits of precision.
var depthShaderText = []byte(
	`//kage:unit pixels
	package main

	func encodeDepth(depth float) vec4 {
		r := floor(depth * 255) / 255
		g := floor(fract(depth * 255) * 255) / 255
		b := fract(depth * 255*255)
		return vec4(r, g, b, 1);
	}

	func decodeDepth(rgba vec4) float {
		return rgba.r + (rgba.g / 255) + (rgba.b / 65025)
	}

	func dstPosToSrcPos(dstPos vec2) vec2 {
		return dstPos.xy - imageDstOrigin() + imageSrc0Origin()
	}

	func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {

		existingDepth := imageSrc0UnsafeAt(dstPosToSrcPos(dstPos.xy))

		if existingDepth.a == 0 || decodeDepth(existingDepth) > color.r {
			return encodeDepth(color.r)
		}

		discard()

	}
	`,
)
